// Package nop provides a storage driver used when the configured store is
// unreachable at startup. Every operation is a reported no-op: it returns
// storage.ErrUnavailable without raising, so the pipeline keeps running in
// file-only mode.
package nop

import (
	"context"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
)

// Driver is the no-op storage driver.
type Driver struct{}

// NewDriver creates a new no-op driver.
func NewDriver() *Driver {
	return &Driver{}
}

// InsertRequest reports the store as unavailable.
func (d *Driver) InsertRequest(_ context.Context, _ *record.Record) (bool, error) {
	return false, storage.ErrUnavailable
}

// PutMarker reports the store as unavailable.
func (d *Driver) PutMarker(_ context.Context, _ *record.Marker) error {
	return storage.ErrUnavailable
}

// Stats reports the store as unavailable.
func (d *Driver) Stats(_ context.Context, _ string) (*record.Stats, error) {
	return nil, storage.ErrUnavailable
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
