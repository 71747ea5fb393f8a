package wiki

import (
	"context"
	"log/slog"
)

// Level classifies a notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives the short user-facing messages a session emits.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, level Level, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, level Level, message string) {
	f(ctx, level, message)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if level == LevelError {
		logger.WarnContext(ctx, message, "level", string(level))
		return
	}
	logger.InfoContext(ctx, message, "level", string(level))
}

type notification struct {
	level   Level
	message string
}

func (s *Session) notify(ctx context.Context, n notification) {
	if n.message == "" {
		return
	}
	s.notifier.Notify(ctx, n.level, n.message)
}
