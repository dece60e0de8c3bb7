package service

import (
	"context"
	"testing"
	"time"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/dto"
	"bastion/internal/event"
	cErr "bastion/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTouchRefreshesPrincipal(t *testing.T) {
	f := newFixture()
	roleID := primitive.NewObjectID()
	user := &model.User{Username: "alice", RoleID: roleID, Status: core.StatusActive}
	f.users = newMemUsers(user)
	svc := f.userService()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// token 內的角色已過期，以資料庫為準
	p, err := svc.Touch(context.Background(), &core.Principal{
		UserID:   user.ID.Hex(),
		Username: "alice",
		RoleID:   primitive.NewObjectID().Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, roleID.Hex(), p.RoleID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, 1, f.users.touched)

	// 間隔內不重複寫入
	svc.now = func() time.Time { return now.Add(10 * time.Second) }
	_, err = svc.Touch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.touched)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.Touch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, f.users.touched)
}

func TestTouchByUsername(t *testing.T) {
	f := newFixture()
	user := &model.User{Username: "bob", RoleID: primitive.NewObjectID(), Status: core.StatusActive}
	f.users = newMemUsers(user)

	p, err := f.userService().Touch(context.Background(), &core.Principal{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), p.UserID)
}

func TestTouchRejects(t *testing.T) {
	f := newFixture()
	blocked := &model.User{Username: "mallory", RoleID: primitive.NewObjectID(), Status: core.StatusBlocked}
	f.users = newMemUsers(blocked)
	svc := f.userService()

	_, err := svc.Touch(context.Background(), &core.Principal{UserID: primitive.NewObjectID().Hex(), Username: "ghost"})
	assert.True(t, cErr.HasCode(err, cErr.INVALID_SESSION))

	_, err = svc.Touch(context.Background(), &core.Principal{UserID: blocked.ID.Hex(), Username: "mallory"})
	assert.True(t, cErr.HasCode(err, cErr.FORBIDDEN))
	assert.Zero(t, f.users.touched)

	f.users.lookupErr = errStoreDown
	_, err = svc.Touch(context.Background(), &core.Principal{Username: "mallory"})
	assert.True(t, cErr.HasCode(err, cErr.DATABASE_ERROR))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestTouchIgnoresLastSeenFailure(t *testing.T) {
	f := newFixture()
	user := &model.User{Username: "alice", RoleID: primitive.NewObjectID(), Status: core.StatusActive}
	f.users = newMemUsers(user)
	f.users.touchErr = errStoreDown

	_, err := f.userService().Touch(context.Background(), &core.Principal{UserID: user.ID.Hex(), Username: "alice"})
	assert.NoError(t, err)
}

func TestCreateUser(t *testing.T) {
	f := newFixture()
	role := &model.Role{Name: "viewer", Alias: "Viewer"}
	f.roles = newMemRoles(role)
	svc := f.userService()

	resp, err := svc.Create(context.Background(), nil, &dto.CreateUserDto{Username: "carol", Name: "Carol", RoleID: role.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, resp.Status)
	assert.Equal(t, []event.Name{event.UserCreated}, f.events.Names())

	_, err = svc.Create(context.Background(), nil, &dto.CreateUserDto{Username: "dave", Name: "Dave", RoleID: primitive.NewObjectID().Hex()})
	assert.True(t, cErr.HasCode(err, cErr.NOT_FOUND))

	_, err = svc.Create(context.Background(), nil, &dto.CreateUserDto{Username: "carol", Name: "Carol", RoleID: role.ID.Hex()})
	assert.True(t, cErr.HasCode(err, cErr.CONFLICT))
}
