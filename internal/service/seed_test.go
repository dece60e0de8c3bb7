package service

import (
	"context"
	"testing"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedData() SeedData {
	return SeedData{
		Roles: []SeedRole{
			{Name: "superadmin", Alias: "Super Admin", IsSuperAdmin: true},
			{Name: "viewer", Alias: "Viewer"},
		},
		Resources: []SeedResource{
			{Name: "/api/v1/roles", Alias: "Roles", Type: core.ResourceTypeAPI},
		},
		Users: []SeedUser{
			{Username: "superadmin", Name: "Super Admin", RoleName: "superadmin"},
		},
		Permissions: []SeedPermission{
			{RoleName: "superadmin", ResourceName: "/api/v1/roles", IsAllowed: true},
			{RoleName: "viewer", ResourceName: "/api/v1/roles", IsAllowed: false},
		},
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture()
	svc := f.seedService()

	report, err := svc.Seed(context.Background(), seedData())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"resource": 1, "role": 2, "user": 1, "permission": 2}, report.Created)
	assert.Empty(t, report.Updated)

	report, err = svc.Seed(context.Background(), seedData())
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Equal(t, map[string]int{"resource": 1, "role": 2, "permission": 2}, report.Updated)

	assert.Len(t, f.roles.byID, 2)
	assert.Len(t, f.users.byID, 1)
	assert.Len(t, f.permissions.rows, 2)
}

func TestSeedUpdatesExistingByNaturalKey(t *testing.T) {
	f := newFixture()
	svc := f.seedService()
	_, err := svc.Seed(context.Background(), seedData())
	require.NoError(t, err)

	data := seedData()
	data.Roles[1].Alias = "Read Only"
	data.Permissions[1].IsAllowed = true
	_, err = svc.Seed(context.Background(), data)
	require.NoError(t, err)

	var viewerPermission *model.Permission
	for _, p := range f.permissions.rows {
		if p.RoleName == "viewer" {
			viewerPermission = p
		}
	}
	require.NotNil(t, viewerPermission)
	assert.True(t, viewerPermission.IsAllowed)
	// 別名變更同步到權限
	assert.Equal(t, "Read Only", viewerPermission.RoleAlias)
}

func TestSeedUnknownReference(t *testing.T) {
	f := newFixture()
	data := seedData()
	data.Permissions = append(data.Permissions, SeedPermission{RoleName: "ghost", ResourceName: "/api/v1/roles"})

	_, err := f.seedService().Seed(context.Background(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
