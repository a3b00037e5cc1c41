package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the root logger is built.
type Options struct {
	Debug bool
	// Path redirects output to a file; the terminal UI owns stdout.
	Path string
}

// New builds a sugared production logger. Stacktraces are only
// attached from DPanic up to keep error lines readable.
func New(opts Options) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	if opts.Debug {
		config.Level.SetLevel(zap.DebugLevel)
	}
	if opts.Path != "" {
		config.OutputPaths = []string{opts.Path}
		config.ErrorOutputPaths = []string{opts.Path}
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build(zap.AddStacktrace(zapcore.DPanicLevel))
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
