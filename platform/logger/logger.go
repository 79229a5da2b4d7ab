// Package logger wraps slog with the domain-specific log helpers the
// services use, so field names stay consistent across the codebase.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey contextKey = "request_id"
	// SubmissionIDKey is the context key for the calculator submission ID.
	SubmissionIDKey contextKey = "submission_id"
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// New returns a logger configured for env: text at debug level in
// development, JSON at info level otherwise.
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger annotated with the request and
// submission IDs present on ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if submissionID, ok := ctx.Value(SubmissionIDKey).(string); ok && submissionID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("submission_id", submissionID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger annotated with the request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs a served request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs a request that failed inside the server.
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// CalculationCompleted logs a finished estimation run.
func (l *Logger) CalculationCompleted(submissionID string, leadScore int, totalLoss float64, confidence string) {
	l.Info("calculation_completed",
		slog.String("submission_id", submissionID),
		slog.Int("lead_score", leadScore),
		slog.Float64("total_loss", totalLoss),
		slog.String("confidence", confidence),
	)
}

// EmailEvent logs an email delivery attempt.
func (l *Logger) EmailEvent(kind, toEmail string, success bool, reason string) {
	if success {
		l.Info("email_event",
			slog.String("kind", kind),
			slog.String("email", toEmail),
			slog.Bool("success", success),
		)
	} else {
		l.Warn("email_event",
			slog.String("kind", kind),
			slog.String("email", toEmail),
			slog.Bool("success", success),
			slog.String("reason", reason),
		)
	}
}

// DatabaseError logs a failed database operation.
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs a request rejected by a rate limiter.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
