// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	operationKey  contextKey = "operation"
	serverUUIDKey contextKey = "server_uuid"
	loggerKey     contextKey = "logger"
)

// ContextWithOperation names the transaction or query whose work is being
// logged. The store sets it before running an operation.
func ContextWithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey, name)
}

// OperationFromContext returns the operation name, or "".
func OperationFromContext(ctx context.Context) string {
	name, _ := ctx.Value(operationKey).(string)
	return name
}

// ContextWithServerUUID records the game server a process stores data for.
// It only labels log lines and is never read as an operation parameter.
func ContextWithServerUUID(ctx context.Context, serverUUID string) context.Context {
	return context.WithValue(ctx, serverUUIDKey, serverUUID)
}

// ServerUUIDFromContext returns the server scope, or "".
func ServerUUIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(serverUUIDKey).(string)
	return id
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the stored logger, or the global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
			return logger
		}
	}
	return Logger()
}

// Ctx returns a logger carrying the operation and server_uuid of ctx.
//
//	logging.Ctx(ctx).Info().Msg("Session stored")
//	// {"level":"info","op":"StoreSession","server_uuid":"...","message":"Session stored"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a builder pre-populated with the fields of ctx.
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := LoggerFromContext(ctx).With()
	if ctx == nil {
		return logCtx
	}
	if op := OperationFromContext(ctx); op != "" {
		logCtx = logCtx.Str("op", op)
	}
	if serverUUID := ServerUUIDFromContext(ctx); serverUUID != "" {
		logCtx = logCtx.Str("server_uuid", serverUUID)
	}
	return logCtx
}

func CtxDebug(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Debug()
}

func CtxInfo(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Info()
}

func CtxWarn(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Warn()
}

// CtxErr starts an error level entry with err attached.
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}

// WithComponent returns a child logger with a component field.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
