// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for BadgerDB storage
const progressKeyPrefix = "backfill:"

// Progress remembers the last row id a heavy step has rewritten so a
// restarted backfill resumes instead of starting over.
type Progress interface {
	// Load returns the last processed id, or 0 when the step has not started.
	Load(step string) (int64, error)
	Save(step string, lastID int64) error
	// Clear forgets the step once it has completed.
	Clear(step string) error
	Close() error
}

// MemoryProgress keeps checkpoints for the lifetime of the process.
type MemoryProgress struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewMemoryProgress creates an empty in-memory checkpoint store.
func NewMemoryProgress() *MemoryProgress {
	return &MemoryProgress{last: make(map[string]int64)}
}

func (p *MemoryProgress) Load(step string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last[step], nil
}

func (p *MemoryProgress) Save(step string, lastID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last[step] = lastID
	return nil
}

func (p *MemoryProgress) Clear(step string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.last, step)
	return nil
}

func (p *MemoryProgress) Close() error { return nil }

// BadgerProgress persists checkpoints in a BadgerDB directory next to the
// store.
type BadgerProgress struct {
	db *badger.DB
}

// OpenBadgerProgress opens (or creates) the checkpoint directory at path.
func OpenBadgerProgress(path string) (*BadgerProgress, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open backfill progress: %w", err)
	}
	return &BadgerProgress{db: db}, nil
}

func (p *BadgerProgress) Load(step string) (int64, error) {
	var lastID int64
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(progressKeyPrefix + step))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt progress for %s: %d bytes", step, len(val))
			}
			lastID = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	return lastID, err
}

func (p *BadgerProgress) Save(step string, lastID int64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(lastID))
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(progressKeyPrefix+step), val)
	})
}

func (p *BadgerProgress) Clear(step string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(progressKeyPrefix + step))
	})
}

func (p *BadgerProgress) Close() error {
	return p.db.Close()
}
