package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("jane", "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "jane", u.Name)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.True(t, u.IsActive())

	// password must be stored hashed
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("jo", "jane@example.com", "s3cret-pass")
	assert.Error(t, err, "name below minimum length must fail")

	_, err = CreateUser("jane", "not-an-email", "s3cret-pass")
	assert.Error(t, err)

	_, err = CreateUser("jane", "jane@example.com", "short")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	u, err := CreateUser("jane", "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, u.SetPassword("new-password"))
	assert.True(t, u.CheckPassword("new-password"))
	assert.False(t, u.CheckPassword("s3cret-pass"))
}

func TestUserIsActive(t *testing.T) {
	u := &User{Status: STATUS_DISABLED}
	assert.False(t, u.IsActive())
}
