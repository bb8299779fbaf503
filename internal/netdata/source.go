// Package netdata supplies NetworkSnapshot values to the profitability
// model. The HTTP fetchers are the only I/O in the system; the model
// itself never blocks. An optional Redis layer provides a read-through
// cache so repeated runs within the TTL do not hammer the upstream APIs.
package netdata

import (
	"context"

	"github.com/unlock-blocks/solmine/internal/model"
)

// Source produces an immutable network snapshot per refresh. A snapshot is
// either fully populated or an error — never partial.
type Source interface {
	Fetch(ctx context.Context) (*model.NetworkSnapshot, error)
}

// StaticSource returns a fixed snapshot. Used for tests and offline runs
// where the network metrics are supplied by hand.
type StaticSource struct {
	Snapshot model.NetworkSnapshot
}

// Fetch returns a copy of the configured snapshot.
func (s *StaticSource) Fetch(_ context.Context) (*model.NetworkSnapshot, error) {
	snap := s.Snapshot
	return &snap, nil
}
