package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserServiceImpl_CreateUser_AssignsUidWhenMissing(t *testing.T) {
	service := NewUserService(NewStubRepo())

	created, err := service.CreateUser(context.Background(), User{Username: "alice", DisplayName: "Alice"})
	assert.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.NotEmpty(t, created.Uid)

	found, err := service.GetUserByUid(context.Background(), created.Uid)
	assert.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
}

func TestUserServiceImpl_GetCurrentUser(t *testing.T) {
	service := NewUserService(NewStubRepo())
	created, err := service.CreateUser(context.Background(), User{Username: "alice"})
	assert.NoError(t, err)

	t.Run("returns the principal from the context", func(t *testing.T) {
		ctx := WithUser(context.Background(), created)
		got, err := service.GetCurrentUser(ctx)
		assert.NoError(t, err)
		assert.Equal(t, created.Username, got.Username)
	})

	t.Run("fails without a principal", func(t *testing.T) {
		_, err := service.GetCurrentUser(context.Background())
		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestUserServiceImpl_GetUserByUid_Unknown(t *testing.T) {
	service := NewUserService(NewStubRepo())

	_, err := service.GetUserByUid(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
