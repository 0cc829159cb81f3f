package health

import (
	"context"
	"database/sql"
	"time"
)

// Service reports process and database health.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status returns the health payload. A nil DB means the server runs on
// in-memory repositories and is still considered healthy.
func (s *Service) Status(ctx context.Context) map[string]any {
	payload := map[string]any{"ok": true, "db": "none"}
	if s.DB == nil {
		return payload
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		payload["db"] = "down"
		return payload
	}
	payload["db"] = "up"
	return payload
}
