package service

import (
	"testing"

	"datastd-go/internal/errs"
	"datastd-go/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwt := token.NewJWTManager("test-secret", 1, 7)
	return NewUserService(repo, jwt), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture()

	user, err := svc.Register("zhangsan", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "USER", user.Role)
	assert.NotEqual(t, "s3cret", user.Password)

	access, refresh, err := svc.Login("zhangsan", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newUserFixture()
	_, err := svc.Register("zhangsan", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register("zhangsan", "other")
	assert.True(t, errs.IsValidation(err))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newUserFixture()
	_, err := svc.Register("zhangsan", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.Login("zhangsan", "wrong")
	assert.True(t, errs.IsValidation(err))

	_, _, err = svc.Login("nobody", "s3cret")
	assert.True(t, errs.IsValidation(err))
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	svc, repo := newUserFixture()
	require.NoError(t, svc.EnsureDefaultAdmin())
	require.NoError(t, svc.EnsureDefaultAdmin())

	users, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ADMIN", users[0].Role)

	_, _, err = svc.Login("admin", "admin")
	assert.NoError(t, err)
}

func TestUpdateUserRoleValidatesRole(t *testing.T) {
	svc, _ := newUserFixture()
	user, err := svc.Register("zhangsan", "s3cret")
	require.NoError(t, err)

	_, err = svc.UpdateUserRole(user.ID, "ROOT")
	assert.True(t, errs.IsValidation(err))

	updated, err := svc.UpdateUserRole(user.ID, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", updated.Role)
}
