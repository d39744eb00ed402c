package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestFindUserByID(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	registered, err := RegisterUser("alice", "correct horse battery")
	assert.NoError(t, err)

	found, err := FindUserByID(registered.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.True(t, mr.Exists(fmt.Sprintf("user:%d", registered.ID)))

	// Second lookup is served from the cache.
	again, err := FindUserByID(registered.ID)
	assert.NoError(t, err)
	assert.Equal(t, found.ID, again.ID)

	_, err = FindUserByID(99999)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB()

	registered, err := RegisterUser("alice", "old password here")
	assert.NoError(t, err)

	updated, err := UpdateProfile(registered.ID, map[string]interface{}{
		"username": "alice2",
		"password": "new password here",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, registered.Version+1, updated.Version)

	// The stored password is a fresh hash of the new password.
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(updated.Password), []byte("new password here")))

	_, err = UpdateProfile(99999, map[string]interface{}{"username": "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileVersionAdvances(t *testing.T) {
	setupTestDB()

	registered, err := RegisterUser("alice", "some password here")
	assert.NoError(t, err)

	first, err := UpdateProfile(registered.ID, map[string]interface{}{"username": "a1"})
	assert.NoError(t, err)
	second, err := UpdateProfile(registered.ID, map[string]interface{}{"username": "a2"})
	assert.NoError(t, err)
	assert.Equal(t, first.Version+1, second.Version)
}
