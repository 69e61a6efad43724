// archive_test.go
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

package snapshot

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipWith(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func sampleData() *Data {
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &Data{
		Users:    []models.User{{ID: "u1", Email: "pm@vex.example", Role: "admin"}},
		Projects: []models.Project{{ID: "p1", Name: "Depot", Status: models.ProjectStatusActive, UserID: "u1"}},
		Milestones: []models.Milestone{
			{ID: "m1", Name: "Survey", Status: models.MilestoneStatusPending, ProjectID: "p1", DueDate: &due},
		},
	}
}

func TestWriteReadArchive(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	doc := NewDocument(sampleData(), createdAt)

	archive, err := WriteArchive(doc)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, reader.File, 1)
	assert.Equal(t, EntryName, reader.File[0].Name)

	got, err := ReadArchive(archive)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, got.Metadata.Version)
	assert.Equal(t, Application, got.Metadata.Application)
	assert.True(t, createdAt.Equal(got.Metadata.CreatedAt))
	assert.Equal(t, int64(1), got.Metadata.Counts[KeyProjects])
	assert.Equal(t, int64(0), got.Metadata.Counts[KeyCalendarEvents])
	require.Len(t, got.Data.Milestones, 1)
	require.NotNil(t, got.Data.Milestones[0].DueDate)
	assert.True(t, got.Data.Milestones[0].DueDate.Equal(*doc.Data.Milestones[0].DueDate))
	assert.Nil(t, got.Data.Milestones[0].CompletedDate)
}

func TestReadArchiveErrors(t *testing.T) {
	tests := []struct {
		name    string
		archive func(t *testing.T) []byte
		want    error
		message string
	}{
		{
			name:    "not a zip",
			archive: func(t *testing.T) []byte { return []byte("plain text") },
			want:    ErrEntryNotFound,
			message: "Invalid backup file - backup-data.json not found",
		},
		{
			name: "no json entry",
			archive: func(t *testing.T) []byte {
				return zipWith(t, map[string]string{"readme.txt": "hello"})
			},
			want:    ErrEntryNotFound,
			message: "Invalid backup file - backup-data.json not found",
		},
		{
			name: "invalid json",
			archive: func(t *testing.T) []byte {
				return zipWith(t, map[string]string{EntryName: "{not json"})
			},
			want:    ErrInvalidJSON,
			message: "Invalid backup file - could not parse JSON",
		},
		{
			name: "missing data",
			archive: func(t *testing.T) []byte {
				return zipWith(t, map[string]string{EntryName: `{"metadata":{"counts":{}}}`})
			},
			want:    ErrMissingData,
			message: "Invalid backup file - missing data section",
		},
		{
			name: "invalid records",
			archive: func(t *testing.T) []byte {
				return zipWith(t, map[string]string{EntryName: `{"data":{"projects":[{"name":"x","status":"active","userId":"u1"}]}}`})
			},
			want:    ErrInvalidRecords,
			message: "Invalid backup file - invalid records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadArchive(tt.archive(t))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsInputError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestReadArchiveInvalidRecordDetails(t *testing.T) {
	archive := zipWith(t, map[string]string{
		EntryName: `{"data":{"projects":[{"id":"p1","name":"x","status":"active"}]}}`,
	})

	_, err := ReadArchive(archive)
	var ve *validation.RequestValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "projects[0].UserID", ve.Fields[0].Field)
	assert.Equal(t, "required", ve.Fields[0].Tag)
}

func TestParseDocumentAcceptsValuesTheSchemaStores(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"data":{
		"users":[{"id":"u1","email":"ops@vex","role":"owner"},{"id":"u2","email":"admin@localhost","role":"admin"}],
		"projects":[{"id":"p1","name":"","status":"archived","userId":"u1","templateId":"t1"}],
		"communications":[{"id":"c1","type":"sms","direction":"sideways","projectId":"p1"}],
		"statusChanges":[{"id":"s1","entityType":"template","entityId":"t1","newStatus":"gone","projectId":"p1"}]
	}}`))
	require.NoError(t, err)
	require.Len(t, doc.Data.Users, 2)
	assert.Equal(t, "ops@vex", doc.Data.Users[0].Email)
	assert.Equal(t, "archived", doc.Data.Projects[0].Status)
}

func TestReadArchiveFallbackEntryAndUnknownKeys(t *testing.T) {
	archive := zipWith(t, map[string]string{
		"export/vex.json": `{"extra":true,"metadata":{"counts":{"users":1}},"data":{"users":[{"id":"u1","email":"a@b.co","role":"user"}]}}`,
	})

	doc, err := ReadArchive(archive)
	require.NoError(t, err)
	assert.Len(t, doc.Data.Users, 1)
	assert.Nil(t, doc.Data.CalendarEvents)

	n, ok := doc.Metadata.ExpectedCount(KeyUsers)
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)
	_, ok = doc.Metadata.ExpectedCount(KeyProjects)
	assert.False(t, ok)
}

func TestReadArchivePrefersCanonicalEntry(t *testing.T) {
	archive := zipWith(t, map[string]string{
		"aaa.json": `{"broken"`,
		EntryName:  `{"data":{}}`,
	})

	doc, err := ReadArchive(archive)
	require.NoError(t, err)
	assert.NotNil(t, doc.Data)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "vex-backup-2026-01-02T03-04-05.zip", Filename(ts))
}
