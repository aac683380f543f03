package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Key under which the request id travels in a context.Context.
const RequestIdKey = "request_id"

// Global logger instance.
var Log *zap.Logger

// Init builds the process-wide JSON logger.
// serviceName is stamped on every line; level is one of debug/info/warn/error.
func Init(serviceName string, level string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "msg"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)

	// AddCallerSkip(1): callers go through the package-level wrappers below,
	// without the skip every line would point at logger.go.
	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Log = Log.With(zap.String("service", serviceName))
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	extractRequestID(ctx, &fields)
	Log.Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	extractRequestID(ctx, &fields)
	Log.Error(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	extractRequestID(ctx, &fields)
	Log.Warn(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	extractRequestID(ctx, &fields)
	Log.Debug(msg, fields...)
}

func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	extractRequestID(ctx, &fields)
	Log.Fatal(msg, fields...)
}

func extractRequestID(ctx context.Context, fields *[]zap.Field) {
	if ctx == nil {
		return
	}
	if rid, ok := ctx.Value(RequestIdKey).(string); ok && rid != "" {
		*fields = append(*fields, zap.String("request_id", rid))
	}
}
