package healthcheck

import (
	"time"

	"github.com/x-xyz/nftmarket/base/ctx"
)

type ComponentStatus string

const (
	StatusOk          ComponentStatus = "ok"
	StatusDown        ComponentStatus = "down"
	StatusUnavailable ComponentStatus = "unavailable"
)

// SnapshotInfo describes the listing snapshot currently served
type SnapshotInfo struct {
	Seq       uint64    `json:"seq"`
	Size      int       `json:"size"`
	FetchedAt time.Time `json:"fetchedAt"`
	Stale     bool      `json:"stale"`
}

type Report struct {
	Mongo          ComponentStatus `json:"mongo"`
	Redis          ComponentStatus `json:"redis"`
	Listings       ComponentStatus `json:"listings"`
	StoredListings int             `json:"storedListings"`
	Snapshot       *SnapshotInfo   `json:"snapshot,omitempty"`
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	// Check fails only when mongo or redis is down, a missing snapshot is reported but tolerated
	Check(context ctx.Ctx) (*Report, error)
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingDB(context ctx.Ctx) error
	PingCache(context ctx.Ctx) error
	CountListings(context ctx.Ctx) (int, error)
}
