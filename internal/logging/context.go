package logging

import (
	"context"
	"log/slog"

	"dubline/internal/services"
)

// WithContext binds the job, stage and request identifiers carried by ctx to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	lookups := []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldJobID, services.JobIDFromContext},
		{FieldStage, services.StageFromContext},
		{FieldCorrelationID, services.RequestIDFromContext},
	}
	for _, l := range lookups {
		if v, ok := l.get(ctx); ok {
			args = append(args, slog.String(l.key, v))
		}
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
