package main

import (
	"errors"
	"flag"
	"log"
	"os"
)

func main() {
	log.Println("[Main] 短信转邮件网关启动中...")

	arguments, err := parseArguments(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Printf("[Main] 参数错误: %v", err)
		os.Exit(1)
	}

	runner := NewApplicationRunner(arguments)
	runner.Run()

	log.Println("[Main] 短信转邮件网关已停止")
}
