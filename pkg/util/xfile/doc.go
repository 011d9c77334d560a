// Package xfile 提供日志等输出文件的路径校验与目录准备。
//
// SanitizePath 只做格式净化（空路径、空字节、相对穿越、目录路径），不把路径
// 限制在某个目录内；EnsureDir 创建文件的父目录。
package xfile
