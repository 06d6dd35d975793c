package domain

import (
	"context"
	"time"
)

// StatsClient is the view-count collaborator. Hit records an endpoint hit;
// GetViews returns hit counts per URI. Callers treat both as advisory:
// failures are logged and views default to zero, never propagated.
type StatsClient interface {
	Hit(ctx context.Context, app, uri, ip string, timestamp time.Time) error
	GetViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}
