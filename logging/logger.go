package logging

import (
	"io"
	"os"
	"strings"

	"smartbudget/config"

	"github.com/sirupsen/logrus"
)

// Logger 全局日志实例，未调用 Init 时使用默认 logrus 配置
var Logger = logrus.New()

// Init 根据配置初始化日志
// release 模式默认 JSON 格式，其余为带完整时间戳的文本格式
func Init(cfg *config.Config) {
	Logger = New(cfg.Log, cfg.Server.Mode, os.Stdout)
}

// New 创建日志实例
func New(cfg config.LogConfig, mode string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	format := strings.ToLower(cfg.Format)
	if format == "" && mode == "release" {
		format = "json"
	}
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetLevel(parseLevel(cfg.Level))
	return l
}

// parseLevel 无法识别的级别回退为 info
func parseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
