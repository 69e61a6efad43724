// recorder.go
//
// Project portal and backup/restore service for VEX
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of vexpm.
// vexpm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// vexpm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with vexpm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testutil

import (
	"slices"
	"sync"
	"testing"

	"gorm.io/gorm"
)

// Op is one recorded write statement
type Op struct {
	Kind  string // delete or create
	Table string
}

// Recorder captures delete and create statements in execution order
type Recorder struct {
	mu  sync.Mutex
	ops []Op
}

// Record registers callbacks on db that append every delete and create
func Record(t *testing.T, db *gorm.DB) *Recorder {
	t.Helper()
	r := &Recorder{}

	err := db.Callback().Delete().After("gorm:delete").Register("testutil:record_delete", func(tx *gorm.DB) {
		if tx.Error == nil {
			r.add("delete", tx.Statement.Table)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register delete recorder: %v", err)
	}

	err = db.Callback().Create().After("gorm:create").Register("testutil:record_create", func(tx *gorm.DB) {
		if tx.Error == nil {
			r.add("create", tx.Statement.Table)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register create recorder: %v", err)
	}

	return r
}

func (r *Recorder) add(kind, table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: kind, Table: table})
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

// Ops returns a copy of the recorded statements
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ops)
}

// Tables returns the tables of the recorded statements of kind, in order,
// without consecutive duplicates from batched inserts.
func (r *Recorder) Tables(kind string) []string {
	var tables []string
	for _, op := range r.Ops() {
		if op.Kind != kind {
			continue
		}
		if n := len(tables); n > 0 && tables[n-1] == op.Table {
			continue
		}
		tables = append(tables, op.Table)
	}
	return tables
}

// Count returns the number of recorded statements of kind
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops() {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
