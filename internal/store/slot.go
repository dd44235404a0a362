package store

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Slot.Get when no value has been written yet.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a single durable key-value cell owned exclusively by the cache
// store. Every read and write of the persisted attendance list goes through
// it, and every write replaces the full contents.
type Slot interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, data []byte) error
}
