package rates

import (
	"context"
	"errors"
)

// ErrNoSnapshot is matched by Storage.Load errors when nothing has been cached yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// Storage persists a single snapshot. Save must replace the stored snapshot
// atomically: a concurrent Load observes either the old or the new snapshot.
type Storage interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	// Check verifies the location exists and is readable.
	Check(ctx context.Context) error
	Location() string
}
