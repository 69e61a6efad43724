// errors.go
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

import "errors"

// Restore input errors. The messages are returned to API callers as-is.
var (
	ErrEntryNotFound  = errors.New("Invalid backup file - backup-data.json not found")
	ErrInvalidJSON    = errors.New("Invalid backup file - could not parse JSON")
	ErrMissingData    = errors.New("Invalid backup file - missing data section")
	ErrInvalidRecords = errors.New("Invalid backup file - invalid records")
)

// IsInputError reports whether err was caused by a bad archive rather than a failure
func IsInputError(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrInvalidJSON) ||
		errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrInvalidRecords)
}
