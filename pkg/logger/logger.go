package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	infoLogger  *zap.Logger
	fatalLogger *zap.Logger

	serviceName = "signal_bot"
)

// Init поднимает глобальные логгеры. Вызывается один раз из main до fx.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	infoLogger = l
	fatalLogger = l
	return nil
}

func Sync() {
	if infoLogger != nil {
		_ = infoLogger.Sync()
	}
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

func Info(format string, args ...interface{}) {
	if infoLogger == nil {
		panic("logger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	infoLogger.With(
		zap.String("service", serviceName),
	).Info(msg)
}

func Warn(format string, args ...interface{}) {
	if infoLogger == nil {
		panic("logger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	infoLogger.With(
		zap.String("service", serviceName),
	).Warn(msg)
}

func Error(format string, args ...interface{}) {
	if infoLogger == nil {
		panic("logger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	infoLogger.With(
		zap.String("service", serviceName),
	).Error(msg)
}

func Fatal(format string, args ...interface{}) {
	if fatalLogger == nil {
		panic("logger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	fatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
