package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, users)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Uma User", "Uma@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "uma@example.com", user.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	logged, _, _, err := svc.Login(ctx, "uma@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, _, _, err = svc.Login(ctx, "uma@example.com", "wrong")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 401, domainErr.HTTPStatus)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 401, domainErr.HTTPStatus)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "", "not-an-email", "short")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 422, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "name")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Uma", "uma@example.com", "password123")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Other", "uma@example.com", "password123")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 409, domainErr.HTTPStatus)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Uma", "uma@example.com", "password123")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "wrong-current", "newpassword1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 401, domainErr.HTTPStatus)

	require.NoError(t, svc.ChangePassword(ctx, user, "password123", "newpassword1"))

	_, _, _, err = svc.Login(ctx, "uma@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestAdminUserManagement(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	staff, err := svc.CreateUser(ctx, AdminUserInput{
		Name:     "Sam Staff",
		Email:    "sam@example.com",
		Password: "password123",
		Role:     domain.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, staff.Role)

	// Empty password keeps the existing hash; role change applies.
	updated, err := svc.UpdateUser(ctx, staff.ID, AdminUserInput{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	_, _, _, err = svc.Login(ctx, "sam@example.com", "password123")
	assert.NoError(t, err)

	_, err = svc.UpdateUser(ctx, staff.ID, AdminUserInput{Role: "superuser"})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 422, domainErr.HTTPStatus)

	users, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestDeleteUserSelfGuard(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, AdminUserInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, AdminUserInput{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "password123",
		Role:     domain.RoleStaff,
	})
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, admin, admin.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 409, domainErr.HTTPStatus)

	require.NoError(t, svc.DeleteUser(ctx, admin, other.ID))

	err = svc.DeleteUser(ctx, admin, other.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}
