package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	defaultConfigPath = "etc/config.yml"
	defaultSMTPPort   = 587
)

// Arguments 命令行参数
// SMTP 传输凭据只经命令行传入,不落在配置文件里
type Arguments struct {
	ConfigPath   string
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
}

// parseArguments 解析并校验命令行参数
func parseArguments(argv []string) (Arguments, error) {
	var (
		arguments    Arguments
		passwordFile string
	)

	flags := flag.NewFlagSet("sms2mail", flag.ContinueOnError)
	flags.StringVar(&arguments.ConfigPath, "config", defaultConfigPath, "配置文件路径")
	flags.StringVar(&arguments.SMTPServer, "server", "", "SMTP 服务器主机名")
	flags.IntVar(&arguments.SMTPPort, "port", defaultSMTPPort, "SMTP 端口,465 走隐式 TLS,其余走 STARTTLS")
	flags.StringVar(&arguments.SMTPUser, "user", "", "SMTP 登录用户名")
	flags.StringVar(&arguments.SMTPPassword, "password", "", "SMTP 登录密码")
	flags.StringVar(&passwordFile, "password-file", "", "从文件读取 SMTP 登录密码")
	flags.StringVar(&arguments.FromAddress, "from", "", "发件人地址")

	if err := flags.Parse(argv); err != nil {
		return Arguments{}, err
	}

	if err := resolvePassword(&arguments, passwordFile); err != nil {
		return Arguments{}, err
	}
	if err := validateArguments(arguments); err != nil {
		return Arguments{}, err
	}
	return arguments, nil
}

// resolvePassword 处理 -password 与 -password-file 的互斥关系
// 文件方式便于配合 systemd credential 或 secret 挂载使用
func resolvePassword(arguments *Arguments, passwordFile string) error {
	if arguments.SMTPPassword != "" && passwordFile != "" {
		return fmt.Errorf("-password 与 -password-file 只能二选一")
	}
	if arguments.SMTPPassword == "" && passwordFile == "" {
		return fmt.Errorf("必须通过 -password 或 -password-file 提供 SMTP 密码")
	}
	if passwordFile == "" {
		return nil
	}

	content, err := os.ReadFile(passwordFile)
	if err != nil {
		return fmt.Errorf("读取密码文件失败: %w", err)
	}

	arguments.SMTPPassword = strings.TrimSpace(string(content))
	if arguments.SMTPPassword == "" {
		return fmt.Errorf("密码文件 %s 内容为空", passwordFile)
	}
	return nil
}

// validateArguments 校验必填参数
func validateArguments(arguments Arguments) error {
	if arguments.SMTPServer == "" {
		return fmt.Errorf("缺少 -server 参数")
	}
	if arguments.SMTPPort < 1 || arguments.SMTPPort > 65535 {
		return fmt.Errorf("-port 取值必须在 1-65535 之间: %d", arguments.SMTPPort)
	}
	if arguments.SMTPUser == "" {
		return fmt.Errorf("缺少 -user 参数")
	}
	if !strings.Contains(arguments.FromAddress, "@") {
		return fmt.Errorf("-from 不是有效的发件人地址: %q", arguments.FromAddress)
	}
	return nil
}
