// models_test.go
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

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackupScheduleDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		schedule BackupSchedule
		want     bool
	}{
		{"disabled", BackupSchedule{Enabled: false, Frequency: FrequencyDaily}, false},
		{"never run", BackupSchedule{Enabled: true, Frequency: FrequencyDaily}, true},
		{"start time pending", BackupSchedule{Enabled: true, Frequency: FrequencyDaily, StartTime: &future}, false},
		{"daily elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyDaily, LastRunAt: ago(24 * time.Hour)}, true},
		{"daily not elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyDaily, LastRunAt: ago(23 * time.Hour)}, false},
		{"weekly not elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyWeekly, LastRunAt: ago(6 * 24 * time.Hour)}, false},
		{"weekly elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyWeekly, LastRunAt: ago(7 * 24 * time.Hour)}, true},
		{"monthly not elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyMonthly, LastRunAt: ago(29 * 24 * time.Hour)}, false},
		{"monthly elapsed", BackupSchedule{Enabled: true, Frequency: FrequencyMonthly, LastRunAt: ago(30 * 24 * time.Hour)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Due(now))
		})
	}
}

func TestUserCloudToken(t *testing.T) {
	now := time.Now()
	azure := IdentityProviderAzureAD
	google := "google"
	token := "graph-token"
	empty := ""
	expired := now.Add(-time.Minute)
	valid := now.Add(time.Hour)

	tests := []struct {
		name   string
		user   User
		wantOK bool
	}{
		{"no provider", User{AccessToken: &token}, false},
		{"other provider", User{IdentityProvider: &google, AccessToken: &token}, false},
		{"no token", User{IdentityProvider: &azure}, false},
		{"empty token", User{IdentityProvider: &azure, AccessToken: &empty}, false},
		{"expired", User{IdentityProvider: &azure, AccessToken: &token, TokenExpiresAt: &expired}, false},
		{"valid", User{IdentityProvider: &azure, AccessToken: &token, TokenExpiresAt: &valid}, true},
		{"no expiry recorded", User{IdentityProvider: &azure, AccessToken: &token}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.user.CloudToken(now)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, token, got)
			}
		})
	}
}

func TestJSONColumn(t *testing.T) {
	j, err := NewJSON(map[string]int64{"projects": 3})
	assert.NoError(t, err)
	b, err := j.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"projects":3}`, string(b))

	b, err = JSON{}.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
