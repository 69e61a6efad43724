// flex_bool_test.go
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

package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{"v":true}`, true},
		{`{"v":false}`, false},
		{`{"v":"true"}`, true},
		{`{"v":"0"}`, false},
		{`{"v":1}`, true},
		{`{"v":0}`, false},
		{`{"v":null}`, false},
		{`{"v":""}`, false},
		{`{}`, false},
	}
	for _, tt := range tests {
		var body struct {
			V FlexBool `json:"v"`
		}
		require.NoError(t, json.Unmarshal([]byte(tt.in), &body), tt.in)
		assert.Equal(t, tt.want, body.V.Bool(), tt.in)
	}
}

func TestFlexBoolRejectsGarbage(t *testing.T) {
	var body struct {
		V FlexBool `json:"v"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"v":"maybe"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"v":[1]}`), &body))
}

func TestCustomError(t *testing.T) {
	err := Forbidden("Admin role required", "backup.authorization.admin")
	assert.Equal(t, 403, err.Code)
	assert.Equal(t, "403: Admin role required [type: backup.authorization.admin]", err.Error())
}
