// archive.go
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
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// maxEntrySize bounds the decompressed document
const maxEntrySize = 512 << 20

// WriteArchive serializes doc as the single entry of a new zip archive
func WriteArchive(doc *Document) ([]byte, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup document: %w", err)
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:   EntryName,
		Method: zip.Deflate,
	}
	header.SetModTime(doc.Metadata.CreatedAt)

	w, err := writer.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadArchive extracts, parses and validates the document held in a backup
// archive. Every returned error wraps one of the input error sentinels except
// for I/O failures inside the archive.
func ReadArchive(data []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ErrEntryNotFound
	}

	entry := findEntry(reader)
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if len(payload) > maxEntrySize {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", ErrInvalidJSON, maxEntrySize)
	}

	return ParseDocument(payload)
}

// ParseDocument parses and validates a raw JSON document
func ParseDocument(payload []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if doc.Data == nil {
		return nil, ErrMissingData
	}

	if err := doc.Data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecords, err)
	}

	return &doc, nil
}

// findEntry prefers the canonical entry name, then any .json entry
func findEntry(reader *zip.Reader) *zip.File {
	for _, f := range reader.File {
		if f.Name == EntryName {
			return f
		}
	}
	for _, f := range reader.File {
		if !f.FileInfo().IsDir() && strings.HasSuffix(strings.ToLower(f.Name), ".json") {
			return f
		}
	}
	return nil
}
