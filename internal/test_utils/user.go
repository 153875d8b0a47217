package test_utils

import (
	"context"

	"github.com/planweave/planweave/pkg/user"
)

// TestUser is the principal used by service and repository tests.
var TestUser = user.User{
	Id:          123,
	Uid:         "7b9f1c1e-6a2d-4e85-9f50-1f6f5a6f9d01",
	Username:    "test_user",
	DisplayName: "Test User",
}

// ContextWithTestUser returns ctx carrying the standard test principal.
func ContextWithTestUser(ctx context.Context) context.Context {
	return user.WithUser(ctx, TestUser)
}

// ContextWithUser returns ctx carrying an arbitrary principal, for
// cross-user isolation tests.
func ContextWithUser(ctx context.Context, u user.User) context.Context {
	return user.WithUser(ctx, u)
}
