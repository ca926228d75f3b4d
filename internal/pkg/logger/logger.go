// Package logger はアプリケーション全体で共有する zap ロガーを保持する
//
// 各コンポーネントは起動時に Named でコンポーネント名付きのロガーを取得する。
// 差し替えは main とテストから Set で行う。
package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "cinema-seat-reservation"

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(NewLogger("development"))
}

// NewLogger は APP_ENV に応じたロガーを作成する
//
//	production  : JSON、ISO8601 の timestamp、Info 以上
//	それ以外     : コンソール、色付きレベル、Debug 以上
//
// LOG_LEVEL が解釈できればそのレベルで上書きする
func NewLogger(env string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if level, ok := levelFromEnv(); ok {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("service", serviceName))
}

func levelFromEnv() (zapcore.Level, bool) {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return zapcore.InfoLevel, false
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, false
	}
	return level, true
}

func Get() *zap.Logger {
	return current.Load()
}

// Set は共有ロガーを差し替える。nil なら何も出力しない
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Named はコンポーネント名付きのロガーを返す（例: "seat", "sweeper"）
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field) { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field) { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }

// Fatal はログを出力してプロセスを終了する。main 以外では使わない
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

func Sync() error {
	return Get().Sync()
}
