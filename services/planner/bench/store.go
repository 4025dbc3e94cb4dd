// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianPlan/services/planner/storage/badger"
)

// Store persists benchmark records.
type Store interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}

const recordPrefix = "run/"

func recordKey(rec Record) string {
	return recordPrefix + rec.Task + "/" + rec.Planner + "/" + rec.ID.String()
}

// BadgerStore keeps records in a planner database under
// run/<task>/<planner>/<id>.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps db. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Save stores rec.
func (s *BadgerStore) Save(ctx context.Context, rec Record) error {
	return s.db.PutJSON(ctx, recordKey(rec), rec)
}

// List returns all records in key order.
func (s *BadgerStore) List(ctx context.Context) ([]Record, error) {
	return s.scan(ctx, recordPrefix)
}

// ListTask returns the records of one task in key order.
func (s *BadgerStore) ListTask(ctx context.Context, task string) ([]Record, error) {
	return s.scan(ctx, recordPrefix+task+"/")
}

func (s *BadgerStore) scan(ctx context.Context, prefix string) ([]Record, error) {
	var out []Record
	err := s.db.Scan(ctx, prefix, func(key string, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// MemoryStore keeps records in memory.
//
// Thread Safety: Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save stores rec.
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey(rec)] = rec
	return nil
}

// List returns all records in key order, matching BadgerStore.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k])
	}
	return out, nil
}
