package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

func newUserService(db *gorm.DB) InterfaceUserService {
	cfg := testConfig()
	return NewUserService(db, cfg, NewJWTService(db, cfg))
}

func TestSignup(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	user, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Empty(t, user.Password)
	assert.Equal(t, models.RoleCatcher, user.Role)
}

func TestSignupDuplicateContact(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)

	_, err = svc.Signup("Suresh", "9876543210", models.RoleVet)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserAlreadyExist))
}

func TestSignupInvalidRole(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.Role("janitor"))
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserRoleInvalid))
}

func TestLoginReportsPinState(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)

	state, err := svc.Login("9876543210")
	require.NoError(t, err)
	assert.True(t, state.NeedsPin)
	assert.False(t, state.IsActive)

	_, err = svc.SetPin("9876543210", "1234")
	require.NoError(t, err)

	state, err = svc.Login("9876543210")
	require.NoError(t, err)
	assert.False(t, state.NeedsPin)
	assert.True(t, state.IsActive)
}

func TestLoginUnknownContact(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Login("0000000000")
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserNotFound))
}

func TestSetPinActivatesAndIssuesToken(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)

	result, err := svc.SetPin("9876543210", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleCatcher, result.Role)

	var user models.User
	require.NoError(t, db.Where("contact_number = ?", "9876543210").First(&user).Error)
	assert.True(t, user.IsActive)
	// The PIN is stored hashed, never in the clear.
	assert.NotEqual(t, "1234", user.Password)
	assert.Len(t, user.Password, 60)
}

func TestEnterPin(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)
	created, err := svc.SetPin("9876543210", "1234")
	require.NoError(t, err)

	result, err := svc.EnterPin("9876543210", "1234")
	require.NoError(t, err)
	// The long-lived token is reused across logins until it expires.
	assert.Equal(t, created.Token, result.Token)

	_, err = svc.EnterPin("9876543210", "9999")
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserPinIncorrect))
}

func TestEnterPinInactiveAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	_, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)

	_, err = svc.EnterPin("9876543210", "1234")
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserInactive))
}

func TestListUsersPagination(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	for i := 0; i < 5; i++ {
		_, err := svc.Signup("Staff", fmt.Sprintf("98765432%02d", i), models.RoleCatcher)
		require.NoError(t, err)
	}

	page1, page, err := svc.ListUsers(models.PaginationQuery{PageNum: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.PageNum)
	assert.Equal(t, 2, page.PageSize)

	page3, _, err := svc.ListUsers(models.PaginationQuery{PageNum: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page3, 1)

	// Descending order puts the newest account first.
	newestFirst, _, err := svc.ListUsers(models.PaginationQuery{PageNum: 1, PageSize: 2, Desc: true})
	require.NoError(t, err)
	require.Len(t, newestFirst, 2)
	assert.Greater(t, newestFirst[0].ID, newestFirst[1].ID)

	// A zero-valued query falls back to the defaults instead of failing.
	all, page, err := svc.ListUsers(models.PaginationQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, 1, page.PageNum)
	assert.Equal(t, 20, page.PageSize)
}

func TestUpdateUserValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	first, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)
	_, err = svc.Signup("Suresh", "9876543211", models.RoleVet)
	require.NoError(t, err)

	_, err = svc.UpdateUser(first.ID, map[string]interface{}{"role": "janitor"})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserRoleInvalid))

	_, err = svc.UpdateUser(first.ID, map[string]interface{}{"contact_number": "9876543211"})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserAlreadyExist))

	updated, err := svc.UpdateUser(first.ID, map[string]interface{}{"name": "Ramesh K"})
	require.NoError(t, err)
	assert.Equal(t, "Ramesh K", updated.Name)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)

	user, err := svc.Signup("Ramesh", "9876543210", models.RoleCatcher)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(user.ID))

	err = svc.DeleteUser(user.ID)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrUserNotFound))
}
