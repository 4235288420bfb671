package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionReaper periodically drops abandoned edit sessions
type SessionReaper struct {
	sessions *EditSessionService
	idle     time.Duration
	logger   *zap.SugaredLogger
}

// NewSessionReaper creates a new background session reaper
func NewSessionReaper(sessions *EditSessionService, idle time.Duration, logger *zap.SugaredLogger) *SessionReaper {
	return &SessionReaper{sessions: sessions, idle: idle, logger: logger}
}

// Start runs the sweep loop until ctx is cancelled
func (r *SessionReaper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Session reaper stopped")
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *SessionReaper) sweep() {
	dropped := r.sessions.Sweep(r.idle)
	if dropped > 0 {
		r.logger.Infow("Idle sessions dropped", "dropped", dropped, "open", r.sessions.Count())
		return
	}
	r.logger.Debug("Session sweep complete")
}
