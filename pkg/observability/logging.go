package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/autograde/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every grading event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnVerify: func(ctx context.Context, e *domain.VerificationEvent) {
			level := slog.LevelInfo
			if e.Type == domain.EventRejected {
				level = slog.LevelDebug
			}
			logger.Log(ctx, level, "submission graded",
				"exercise", e.Exercise,
				"outcome", e.Type,
				"hook", e.Hook,
				"reason", e.Reason,
				"duration", e.Duration,
			)
		},
		OnHookFailure: func(ctx context.Context, e *domain.HookEvent) {
			logger.WarnContext(ctx, "eject hook failed",
				"exercise", e.Exercise,
				"kind", e.Kind,
				"err", e.Err,
			)
		},
	}
}
