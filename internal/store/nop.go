package store

import (
	"fmt"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

var _ model.SnapshotStore = (*NopStore)(nil)

// NopStore is used when persistence is disabled. It keeps nothing, so a failed
// refresh falls straight through to the sample dataset.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) SaveSnapshot(string, []model.Record) error { return nil }
func (s *NopStore) Prune(time.Duration) error                { return nil }
func (s *NopStore) Close() error                             { return nil }

func (s *NopStore) LoadSnapshot(table string) ([]model.Record, time.Time, error) {
	return nil, time.Time{}, fmt.Errorf("snapshot of %s: %w", table, model.ErrNotFound)
}
