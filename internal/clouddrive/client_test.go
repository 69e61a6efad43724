// client_test.go
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

package clouddrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "graph-token"

type storedItem struct {
	name string
	data []byte
}

// fakeGraph serves the handful of drive endpoints the client uses, rooted at /me/drive
type fakeGraph struct {
	t *testing.T

	mu            sync.Mutex
	server        *httptest.Server
	folderExists  bool
	raceOnCreate  bool
	createCalls   int
	folderLookups int
	items         map[string]storedItem
	nextID        int
	failUploads   bool
}

func newFakeGraph(t *testing.T) *fakeGraph {
	f := &fakeGraph{t: t, items: map[string]storedItem{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGraph) client() *Client {
	return New(Config{BaseURL: f.server.URL, FolderName: "VEX-Backups"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func graphError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]interface{}{"error": map[string]string{"code": code, "message": code}})
}

func (f *fakeGraph) itemJSON(id string, it storedItem) map[string]interface{} {
	return map[string]interface{}{
		"id":                           id,
		"name":                         it.name,
		"size":                         len(it.data),
		"webUrl":                       "https://sharepoint.example/" + it.name,
		"@microsoft.graph.downloadUrl": f.server.URL + "/download/" + id,
	}
}

func (f *fakeGraph) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	if strings.HasPrefix(path, "/download/") {
		assert.Empty(f.t, r.Header.Get("Authorization"), "download url must not receive the bearer token")
		it, ok := f.items[strings.TrimPrefix(path, "/download/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(it.data)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+testToken {
		graphError(w, http.StatusUnauthorized, "InvalidAuthenticationToken")
		return
	}

	folder := map[string]interface{}{"id": "folder-1", "name": "VEX-Backups", "folder": map[string]int{"childCount": len(f.items)}}

	switch {
	case r.Method == http.MethodGet && path == "/me/drive/root:/VEX-Backups":
		f.folderLookups++
		if !f.folderExists {
			graphError(w, http.StatusNotFound, "itemNotFound")
			return
		}
		writeJSON(w, http.StatusOK, folder)

	case r.Method == http.MethodPost && path == "/me/drive/root/children":
		f.createCalls++
		var body map[string]interface{}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(f.t, "fail", body["@microsoft.graph.conflictBehavior"])
		f.folderExists = true
		if f.raceOnCreate {
			graphError(w, http.StatusConflict, "nameAlreadyExists")
			return
		}
		writeJSON(w, http.StatusCreated, folder)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/me/drive/items/folder-1:/"):
		if f.failUploads {
			graphError(w, http.StatusServiceUnavailable, "serviceNotAvailable")
			return
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/me/drive/items/folder-1:/"), ":/content")
		data, _ := io.ReadAll(r.Body)
		f.nextID++
		id := fmt.Sprintf("item-%d", f.nextID)
		f.items[id] = storedItem{name: name, data: data}
		writeJSON(w, http.StatusCreated, f.itemJSON(id, f.items[id]))

	case r.Method == http.MethodGet && path == "/me/drive/root:/VEX-Backups:/children":
		if !f.folderExists {
			graphError(w, http.StatusNotFound, "itemNotFound")
			return
		}
		values := []interface{}{
			map[string]interface{}{"id": "sub", "name": "archive", "folder": map[string]int{"childCount": 0}},
			map[string]interface{}{"id": "txt", "name": "notes.txt"},
		}
		for id, it := range f.items {
			values = append(values, f.itemJSON(id, it))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"value": values})

	case strings.HasPrefix(path, "/me/drive/items/"):
		id := strings.TrimPrefix(path, "/me/drive/items/")
		it, ok := f.items[id]
		if !ok {
			graphError(w, http.StatusNotFound, "itemNotFound")
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, f.itemJSON(id, it))
		case http.MethodDelete:
			delete(f.items, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		graphError(w, http.StatusNotFound, "unexpected "+r.Method+" "+path)
	}
}

func TestDriveRoot(t *testing.T) {
	tests := []struct {
		site, drive, want string
	}{
		{"site-1", "drive-1", "/sites/site-1/drives/drive-1"},
		{"site-1", "", "/sites/site-1/drive"},
		{"", "drive-1", "/drives/drive-1"},
		{"", "", "/me/drive"},
	}
	for _, tt := range tests {
		c := New(Config{BaseURL: "http://graph", SiteID: tt.site, DriveID: tt.drive})
		assert.Equal(t, tt.want, c.DriveRoot())
	}
}

func TestEnsureFolderCreatesWhenMissing(t *testing.T) {
	fake := newFakeGraph(t)

	folder, err := fake.client().EnsureFolder(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "folder-1", folder.ID)
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 1, fake.folderLookups)
}

func TestEnsureFolderExisting(t *testing.T) {
	fake := newFakeGraph(t)
	fake.folderExists = true

	folder, err := fake.client().EnsureFolder(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "folder-1", folder.ID)
	assert.Equal(t, 0, fake.createCalls)
}

func TestEnsureFolderReResolvesOnConflict(t *testing.T) {
	fake := newFakeGraph(t)
	fake.raceOnCreate = true

	folder, err := fake.client().EnsureFolder(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "folder-1", folder.ID)
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 2, fake.folderLookups)
}

func TestUploadListDownloadDelete(t *testing.T) {
	fake := newFakeGraph(t)
	client := fake.client()
	ctx := context.Background()

	item, err := client.Upload(ctx, testToken, "vex-backup-2026-01-01T00-00-00.zip", []byte("PK-archive"))
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "https://sharepoint.example/vex-backup-2026-01-01T00-00-00.zip", item.WebURL)
	assert.NotEmpty(t, item.DownloadURL)

	items, err := client.List(ctx, testToken)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "vex-backup-2026-01-01T00-00-00.zip", items[0].Name)

	data, err := client.Download(ctx, testToken, "item-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("PK-archive"), data)

	require.NoError(t, client.Delete(ctx, testToken, "item-1"))
	_, err = client.Download(ctx, testToken, "item-1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListMissingFolderIsEmpty(t *testing.T) {
	fake := newFakeGraph(t)

	items, err := fake.client().List(context.Background(), testToken)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGraphErrorsAreTyped(t *testing.T) {
	fake := newFakeGraph(t)
	fake.folderExists = true
	fake.failUploads = true

	_, err := fake.client().Upload(context.Background(), testToken, "a.zip", []byte("x"))
	require.Error(t, err)

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusServiceUnavailable, ge.Status)
	assert.Equal(t, "serviceNotAvailable", ge.Code)

	_, err = fake.client().List(context.Background(), "wrong-token")
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnauthorized, ge.Status)
}
