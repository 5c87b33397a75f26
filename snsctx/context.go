// Package snsctx carries per-call diagnostics settings through a context.
package snsctx

import (
	"context"
	"log/slog"
)

type ctxIndex int

const (
	ctxIndexVerbose ctxIndex = iota
	ctxIndexLogger
)

// IsVerbose reports whether raw bus traffic should be dumped.
func IsVerbose(ctx context.Context) bool {
	val, ok := ctx.Value(ctxIndexVerbose).(bool)
	return ok && val
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexVerbose, value)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxIndexLogger, logger)
}

// Logger returns the logger stored in ctx or the default one.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxIndexLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
