// client.go
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

// Package clouddrive is a small Microsoft Graph drive client used to keep
// backup archives in a SharePoint or OneDrive folder.
package clouddrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/metrics"
)

const (
	breakerName = "graph-drive"

	// maxDownloadSize bounds an archive fetched from the drive
	maxDownloadSize = 512 << 20
)

// Config selects the drive and folder used for backups
type Config struct {
	BaseURL    string // e.g. https://graph.microsoft.com/v1.0
	SiteID     string
	DriveID    string
	FolderName string
	HTTPClient *http.Client
}

// Item is the subset of a Graph driveItem this service uses
type Item struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	WebURL               string    `json:"webUrl"`
	DownloadURL          string    `json:"@microsoft.graph.downloadUrl,omitempty"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder,omitempty"`
}

type itemList struct {
	Value    []Item `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// Client talks to one Graph drive
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// New creates a drive client
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.FolderName == "" {
		cfg.FolderName = "VEX-Backups"
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx answers mean Graph is up
		IsSuccessful: func(err error) bool {
			var ge *Error
			if errors.As(err, &ge) {
				return ge.Status < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{cfg: cfg, http: httpClient, cb: cb}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// DriveRoot returns the Graph path of the configured drive
func (c *Client) DriveRoot() string {
	switch {
	case c.cfg.SiteID != "" && c.cfg.DriveID != "":
		return fmt.Sprintf("/sites/%s/drives/%s", url.PathEscape(c.cfg.SiteID), url.PathEscape(c.cfg.DriveID))
	case c.cfg.SiteID != "":
		return fmt.Sprintf("/sites/%s/drive", url.PathEscape(c.cfg.SiteID))
	case c.cfg.DriveID != "":
		return fmt.Sprintf("/drives/%s", url.PathEscape(c.cfg.DriveID))
	default:
		return "/me/drive"
	}
}

// FolderName returns the backup folder name
func (c *Client) FolderName() string {
	return c.cfg.FolderName
}

// EnsureFolder resolves the backup folder, creating it when absent. A
// conflict on create means another request created it first, so the folder
// is resolved again.
func (c *Client) EnsureFolder(ctx context.Context, token string) (*Item, error) {
	folder, err := c.getFolder(ctx, token)
	if err == nil {
		return folder, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("failed to resolve backup folder: %w", err)
	}

	body := map[string]interface{}{
		"name":                              c.cfg.FolderName,
		"folder":                            map[string]interface{}{},
		"@microsoft.graph.conflictBehavior": "fail",
	}
	var created Item
	err = c.doJSON(ctx, token, http.MethodPost, c.DriveRoot()+"/root/children", body, &created)
	if err == nil {
		logging.Info().Str("folder", c.cfg.FolderName).Str("id", created.ID).Msg("created cloud backup folder")
		return &created, nil
	}
	if !IsConflict(err) {
		return nil, fmt.Errorf("failed to create backup folder: %w", err)
	}

	folder, err = c.getFolder(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup folder after conflict: %w", err)
	}
	return folder, nil
}

func (c *Client) getFolder(ctx context.Context, token string) (*Item, error) {
	var folder Item
	path := fmt.Sprintf("%s/root:/%s", c.DriveRoot(), url.PathEscape(c.cfg.FolderName))
	if err := c.doJSON(ctx, token, http.MethodGet, path, nil, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// Upload stores data as filename inside the backup folder
func (c *Client) Upload(ctx context.Context, token, filename string, data []byte) (*Item, error) {
	folder, err := c.EnsureFolder(ctx, token)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/items/%s:/%s:/content", c.DriveRoot(), url.PathEscape(folder.ID), url.PathEscape(filename))
	req, err := c.newRequest(ctx, token, http.MethodPut, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/zip")
	req.ContentLength = int64(len(data))

	var item Item
	if err := c.do(req, &item); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return &item, nil
}

// List returns the zip archives in the backup folder, newest first as Graph orders them.
// A missing folder yields an empty list.
func (c *Client) List(ctx context.Context, token string) ([]Item, error) {
	path := fmt.Sprintf("%s/root:/%s:/children?$orderby=%s", c.DriveRoot(), url.PathEscape(c.cfg.FolderName), url.QueryEscape("lastModifiedDateTime desc"))

	var items []Item
	for path != "" {
		var page itemList
		if err := c.doJSON(ctx, token, http.MethodGet, path, nil, &page); err != nil {
			if IsNotFound(err) {
				return []Item{}, nil
			}
			return nil, fmt.Errorf("failed to list cloud backups: %w", err)
		}
		for _, it := range page.Value {
			if it.Folder == nil && strings.HasSuffix(strings.ToLower(it.Name), ".zip") {
				items = append(items, it)
			}
		}
		path = page.NextLink
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Download resolves the item's pre-authenticated download url and fetches the content
func (c *Client) Download(ctx context.Context, token, itemID string) ([]byte, error) {
	var item Item
	path := fmt.Sprintf("%s/items/%s", c.DriveRoot(), url.PathEscape(itemID))
	if err := c.doJSON(ctx, token, http.MethodGet, path, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to resolve cloud backup %s: %w", itemID, err)
	}
	if item.DownloadURL == "" {
		return nil, ErrNoDownloadURL
	}

	// The download url carries its own credentials
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.DownloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.execute(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cloud backup %s: %w", itemID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read cloud backup %s: %w", itemID, err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("cloud backup %s exceeds %d bytes", itemID, maxDownloadSize)
	}
	return data, nil
}

// Delete removes a cloud backup
func (c *Client) Delete(ctx context.Context, token, itemID string) error {
	path := fmt.Sprintf("%s/items/%s", c.DriveRoot(), url.PathEscape(itemID))
	if err := c.doJSON(ctx, token, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete cloud backup %s: %w", itemID, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, token, method, path string, body io.Reader) (*http.Request, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.cfg.BaseURL + path
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode graph request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, token, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.execute(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}

// execute sends req through the circuit breaker. Non-2xx responses are
// converted to *Error and their bodies closed.
func (c *Client) execute(req *http.Request) (*http.Response, error) {
	resp, err := c.cb.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		defer resp.Body.Close()
		return nil, readError(resp)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	}
	return resp, err
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	ge := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var envelope graphErrorBody
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
		ge.Code = envelope.Error.Code
		ge.Message = envelope.Error.Message
	}
	return ge
}
