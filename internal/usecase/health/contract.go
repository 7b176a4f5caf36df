package health

import "context"

// DBPinger checks storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexProber reports whether the native search index is present and serving.
type IndexProber interface {
	IndexReady(ctx context.Context) (bool, error)
}

// ProviderChecker checks an external provider (embedding, completion).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
