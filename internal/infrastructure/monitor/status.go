package monitor

import "time"

type Status struct {
	PostgreSQL    bool          `json:"postgresql"`
	Redis         bool          `json:"redis"`
	RedisEnabled  bool          `json:"redis_enabled"`
	Snapshots     bool          `json:"snapshots"`
	SnapshotCount int           `json:"snapshot_count"`
	Catalog       CatalogStatus `json:"catalog"`
	Engines       []string      `json:"engines"`
	LastCheck     time.Time     `json:"last_check"`
}

type CatalogStatus struct {
	Products  int       `json:"products"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Fresh     bool      `json:"fresh"`
}

// Healthy reports whether the required dependencies answer. The catalog is
// not required: an empty snapshot is served until upstream recovers.
func (s Status) Healthy() bool {
	return s.PostgreSQL && (s.Redis || !s.RedisEnabled)
}
