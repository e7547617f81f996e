// Package app 组装 Hello World 应用：配置、日志管道与 Web 主机
package app

// Version 应用版本，发布时通过 -ldflags "-X github.com/gocrud/hello.Version=v1.0.0" 覆盖
var Version = "dev"
