package service

import (
	"context"
	"errors"
	"testing"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/dto"
	"bastion/internal/event"
	cErr "bastion/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errorDesc 取出應用錯誤的描述；Error() 只有簡短錯誤訊息
func errorDesc(t *testing.T, err error) string {
	t.Helper()
	var appErr *cErr.Error
	require.True(t, errors.As(err, &appErr), "not an application error: %v", err)
	return appErr.ErrorDesc()
}

func seededFixture() (*fixture, *model.Role, *model.Resource) {
	f := newFixture()
	role := &model.Role{ID: primitive.NewObjectID(), Name: "admin", Alias: "Admin"}
	resource := &model.Resource{ID: primitive.NewObjectID(), Name: rolesRoute, Alias: "Roles", Type: core.ResourceTypeAPI}
	f.roles = newMemRoles(role)
	f.resources = newMemResources(resource)
	return f, role, resource
}

func TestCreatePermission(t *testing.T) {
	f, role, resource := seededFixture()
	actor := &core.Principal{UserID: primitive.NewObjectID().Hex(), Username: "root", RoleID: role.ID.Hex()}

	resp, err := f.permissionService().Create(context.Background(), actor, &dto.CreatePermissionDto{
		RoleID:     role.ID.Hex(),
		ResourceID: resource.ID.Hex(),
		IsAllowed:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "admin", resp.RoleName)
	assert.Equal(t, "Admin", resp.RoleAlias)
	assert.Equal(t, rolesRoute, resp.ResourceName)
	assert.Equal(t, "Roles", resp.ResourceAlias)
	assert.True(t, resp.IsAllowed)
	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, actor.UserID, resp.CreatedBy.ID.Hex())

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.PermissionCreated, events[0].Name)
	assert.Equal(t, resp.ID, events[0].EntityID)
	assert.Equal(t, actor.UserID, events[0].ActorID)
}

func TestCreatePermissionDuplicate(t *testing.T) {
	f, role, resource := seededFixture()
	svc := f.permissionService()
	req := &dto.CreatePermissionDto{RoleID: role.ID.Hex(), ResourceID: resource.ID.Hex(), IsAllowed: true}

	_, err := svc.Create(context.Background(), nil, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), nil, req)
	require.Error(t, err)
	assert.True(t, cErr.HasCode(err, cErr.CONFLICT))
	assert.Equal(t, "permission with role admin and resource "+rolesRoute+" already exists", errorDesc(t, err))

	assert.Len(t, f.permissions.rows, 1)
	assert.Equal(t, []event.Name{event.PermissionCreated}, f.events.Names())
}

func TestCreatePermissionMissingReferences(t *testing.T) {
	f, role, resource := seededFixture()
	svc := f.permissionService()

	_, err := svc.Create(context.Background(), nil, &dto.CreatePermissionDto{
		RoleID:     primitive.NewObjectID().Hex(),
		ResourceID: resource.ID.Hex(),
	})
	assert.True(t, cErr.HasCode(err, cErr.NOT_FOUND))
	assert.Equal(t, "role not found", errorDesc(t, err))

	_, err = svc.Create(context.Background(), nil, &dto.CreatePermissionDto{
		RoleID:     role.ID.Hex(),
		ResourceID: primitive.NewObjectID().Hex(),
	})
	assert.True(t, cErr.HasCode(err, cErr.NOT_FOUND))
	assert.Equal(t, "resource not found", errorDesc(t, err))

	assert.Empty(t, f.permissions.rows)
	assert.Empty(t, f.events.Events())
}

func TestUpdatePermissionFlags(t *testing.T) {
	f, role, resource := seededFixture()
	svc := f.permissionService()
	created, err := svc.Create(context.Background(), nil, &dto.CreatePermissionDto{
		RoleID:     role.ID.Hex(),
		ResourceID: resource.ID.Hex(),
		IsAllowed:  true,
	})
	require.NoError(t, err)

	disabled := true
	id, _ := primitive.ObjectIDFromHex(created.ID)
	updated, err := svc.Update(context.Background(), nil, id, &dto.UpdatePermissionDto{IsDisabled: &disabled})
	require.NoError(t, err)
	assert.True(t, updated.IsAllowed)
	assert.True(t, updated.IsDisabled)
	assert.Equal(t, []event.Name{event.PermissionCreated, event.PermissionUpdated}, f.events.Names())

	_, err = svc.Update(context.Background(), nil, primitive.NewObjectID(), &dto.UpdatePermissionDto{IsDisabled: &disabled})
	assert.True(t, cErr.HasCode(err, cErr.NOT_FOUND))
}

func TestDeletePermission(t *testing.T) {
	f, _, _ := seededFixture()
	p := f.permissions.add(&model.Permission{RoleID: primitive.NewObjectID(), ResourceID: primitive.NewObjectID()})
	svc := f.permissionService()

	require.NoError(t, svc.Delete(context.Background(), nil, p.ID))
	assert.Empty(t, f.permissions.rows)

	err := svc.Delete(context.Background(), nil, p.ID)
	assert.True(t, cErr.HasCode(err, cErr.NOT_FOUND))
	assert.Equal(t, []event.Name{event.PermissionDeleted}, f.events.Names())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f, role, resource := seededFixture()
	f.events.Err = errStoreDown

	_, err := f.permissionService().Create(context.Background(), nil, &dto.CreatePermissionDto{
		RoleID:     role.ID.Hex(),
		ResourceID: resource.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Len(t, f.permissions.rows, 1)
}

func TestFindOrphans(t *testing.T) {
	f, role, resource := seededFixture()
	goneRole, goneResource := primitive.NewObjectID(), primitive.NewObjectID()

	healthy := f.permissions.add(&model.Permission{RoleID: role.ID, ResourceID: resource.ID})
	noRole := f.permissions.add(&model.Permission{RoleID: goneRole, ResourceID: resource.ID})
	noResource := f.permissions.add(&model.Permission{RoleID: role.ID, ResourceID: goneResource})
	neither := f.permissions.add(&model.Permission{RoleID: goneRole, ResourceID: goneResource})

	orphans, err := f.permissionService().FindOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 3)

	byID := map[string]*dto.OrphanPermissionDto{}
	for _, o := range orphans {
		byID[o.Permission.ID] = o
	}
	assert.NotContains(t, byID, healthy.ID.Hex())
	assert.Equal(t, &dto.OrphanPermissionDto{Permission: byID[noRole.ID.Hex()].Permission, MissingRole: true}, byID[noRole.ID.Hex()])
	assert.True(t, byID[noResource.ID.Hex()].MissingResource)
	assert.False(t, byID[noResource.ID.Hex()].MissingRole)
	assert.True(t, byID[neither.ID.Hex()].MissingRole)
	assert.True(t, byID[neither.ID.Hex()].MissingResource)

	// 只回報不修復
	assert.Len(t, f.permissions.rows, 4)
}

func TestFindOrphansNone(t *testing.T) {
	f, role, resource := seededFixture()
	f.permissions.add(&model.Permission{RoleID: role.ID, ResourceID: resource.ID})

	orphans, err := f.permissionService().FindOrphans(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orphans)
	assert.Empty(t, orphans)
}

func TestRenameRoleSyncsPermissions(t *testing.T) {
	f, role, resource := seededFixture()
	f.permissions.add(&model.Permission{RoleID: role.ID, RoleName: role.Name, RoleAlias: role.Alias, ResourceID: resource.ID})

	name := "administrator"
	updated, err := f.roleService().Update(context.Background(), nil, role.ID, &dto.UpdateRoleDto{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, name, f.permissions.rows[0].RoleName)
	assert.Equal(t, []event.Name{event.RoleUpdated}, f.events.Names())
}

func TestRenameResourceSyncsPermissions(t *testing.T) {
	f, role, resource := seededFixture()
	f.permissions.add(&model.Permission{RoleID: role.ID, ResourceID: resource.ID, ResourceName: resource.Name})

	name := "/api/v2/roles"
	_, err := f.resourceService().Update(context.Background(), nil, resource.ID, &dto.UpdateResourceDto{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, f.permissions.rows[0].ResourceName)
}

func TestCreateRoleConflict(t *testing.T) {
	f, _, _ := seededFixture()

	_, err := f.roleService().Create(context.Background(), nil, &dto.CreateRoleDto{Name: "admin", Alias: "Other"})
	assert.True(t, cErr.HasCode(err, cErr.CONFLICT))
	assert.Empty(t, f.events.Events())
}
