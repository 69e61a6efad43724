// projects_test.go
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

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProjects(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()

	projects, err := services.ListProjects(ctx, db, "")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Annex Fit-out", projects[0].Name)
	assert.Len(t, projects[1].Milestones, 2)
	assert.Equal(t, "Site Survey", projects[1].Milestones[0].Name)

	active, err := services.ListProjects(ctx, db, models.ProjectStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, testutil.ProjectAID, active[0].ID)
}

func TestGetProject(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()

	project, err := services.GetProject(ctx, db, testutil.ProjectAID)
	require.NoError(t, err)
	assert.Len(t, project.Milestones, 2)
	assert.Len(t, project.Files, 1)
	assert.Len(t, project.Communications, 1)

	_, err = services.GetProject(ctx, db, "missing")
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestUpdateMilestoneStatusRecordsChange(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()
	actor := loadUser(t, db, testutil.ManagerID)

	milestone, err := services.UpdateMilestoneStatus(ctx, db, testutil.MilestoneInstallID, models.MilestoneStatusCompleted, actor)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusCompleted, milestone.Status)
	require.NotNil(t, milestone.CompletedDate)

	var changes []models.StatusChange
	require.NoError(t, db.Where("entity_id = ?", testutil.MilestoneInstallID).Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, "milestone", changes[0].EntityType)
	assert.Equal(t, models.MilestoneStatusInProgress, *changes[0].OldStatus)
	assert.Equal(t, models.MilestoneStatusCompleted, changes[0].NewStatus)
	assert.Equal(t, testutil.ProjectAID, changes[0].ProjectID)
	assert.Equal(t, testutil.ManagerID, *changes[0].UserID)

	reopened, err := services.UpdateMilestoneStatus(ctx, db, testutil.MilestoneInstallID, models.MilestoneStatusBlocked, nil)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedDate)

	require.NoError(t, db.Where("entity_id = ?", testutil.MilestoneInstallID).Find(&changes).Error)
	assert.Len(t, changes, 2)
}

func TestUpdateMilestoneStatusUnchangedIsNoop(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)

	_, err := services.UpdateMilestoneStatus(context.Background(), db, testutil.MilestoneHandoffID, models.MilestoneStatusPending, nil)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.StatusChange{}).Where("entity_id = ?", testutil.MilestoneHandoffID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateMilestoneStatusNotFound(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := services.UpdateMilestoneStatus(context.Background(), db, "missing", models.MilestoneStatusCompleted, nil)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}
