package logger

import "go.uber.org/zap"

// AsynqLogger 适配 asynq.Logger 接口，把 Worker 日志导入 Zap
type AsynqLogger struct{}

func NewAsynqLogger() *AsynqLogger {
	return &AsynqLogger{}
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	zap.S().Debug(args...)
}

func (l *AsynqLogger) Info(args ...interface{}) {
	zap.S().Info(args...)
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	zap.S().Warn(args...)
}

func (l *AsynqLogger) Error(args ...interface{}) {
	zap.S().Error(args...)
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	zap.S().Fatal(args...)
}
