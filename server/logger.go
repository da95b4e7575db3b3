package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；InitLogger 之前为空实现，测试中不产生输出
var Log = zap.NewNop().Sugar()

// InitLogger 初始化 zap 日志到本地文件（支持滚动），console 为 true 时同时输出到 stdout
// level 为空时使用 debug
func InitLogger(filePath, level string, console bool) error {
	lvl := zapcore.DebugLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}

	// 文件滚动策略：10MB 每文件，保留3个备份
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)
	core := zapcore.NewCore(encoder, zapcore.AddSync(lj), lvl)
	if console {
		core = zapcore.NewTee(core, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl))
	}

	// 添加调用者信息（文件:行号）
	logger := zap.New(core, zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
