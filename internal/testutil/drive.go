// drive.go
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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/localnerve/vexpm/internal/clouddrive"
)

// FakeDrive keeps uploaded archives in memory
type FakeDrive struct {
	mu        sync.Mutex
	items     map[string][]byte
	names     map[string]string
	nextID    int
	UploadErr error
	Tokens    []string
}

func NewFakeDrive() *FakeDrive {
	return &FakeDrive{items: map[string][]byte{}, names: map[string]string{}}
}

func notFound(id string) error {
	return &clouddrive.Error{Status: 404, Code: "itemNotFound", Message: "item " + id + " not found"}
}

func (f *FakeDrive) Upload(_ context.Context, token, filename string, data []byte) (*clouddrive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.nextID++
	id := fmt.Sprintf("item-%d", f.nextID)
	f.items[id] = data
	f.names[id] = filename
	return f.item(id), nil
}

func (f *FakeDrive) item(id string) *clouddrive.Item {
	return &clouddrive.Item{
		ID:     id,
		Name:   f.names[id],
		Size:   int64(len(f.items[id])),
		WebURL: "https://sharepoint.example/" + f.names[id],
	}
}

func (f *FakeDrive) List(_ context.Context, token string) ([]clouddrive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	items := make([]clouddrive.Item, 0, len(f.items))
	for id := range f.items {
		items = append(items, *f.item(id))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f *FakeDrive) Download(_ context.Context, _ string, itemID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.items[itemID]
	if !ok {
		return nil, notFound(itemID)
	}
	return data, nil
}

func (f *FakeDrive) Delete(_ context.Context, _ string, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[itemID]; !ok {
		return notFound(itemID)
	}
	delete(f.items, itemID)
	delete(f.names, itemID)
	return nil
}

// Put stores an archive directly and returns its item id
func (f *FakeDrive) Put(filename string, data []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("item-%d", f.nextID)
	f.items[id] = data
	f.names[id] = filename
	return id
}

// Data returns a stored archive
func (f *FakeDrive) Data(id string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}
