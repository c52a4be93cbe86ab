package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceclone/internal/auth"
	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/model"
)

type fakeUserRepository struct {
	users map[string]*model.User
}

func (r *fakeUserRepository) Create(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.Username]; ok {
		return apperrors.ErrUserAlreadyExists
	}
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *model.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepository) DecrementCredits(context.Context, string) (bool, error) {
	return false, errors.New("not used")
}

func (r *fakeUserRepository) IncrementCredits(context.Context, string) error {
	return errors.New("not used")
}

func TestSeed_CreatesAdmin(t *testing.T) {
	repo := &fakeUserRepository{users: map[string]*model.User{}}

	user, created, err := seed(context.Background(), repo, seedOptions{
		Username: "root", Password: "secret1", FirstName: "R", LastName: "T", Admin: true, Credits: -1,
	}, model.DefaultSignupCredits)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, model.DefaultSignupCredits, user.Credits)

	ok, err := auth.VerifyPassword("secret1", repo.users["root"].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeed_UpdatesExisting(t *testing.T) {
	repo := &fakeUserRepository{users: map[string]*model.User{
		"abc": {Username: "abc", PasswordHash: "keep", Credits: 0},
	}}

	user, created, err := seed(context.Background(), repo, seedOptions{Username: "abc", Credits: 10}, 4)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 10, user.Credits)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, "keep", repo.users["abc"].PasswordHash)
}

func TestSeed_Rejections(t *testing.T) {
	repo := &fakeUserRepository{users: map[string]*model.User{}}

	_, _, err := seed(context.Background(), repo, seedOptions{Credits: -1}, 4)
	assert.Error(t, err)

	_, _, err = seed(context.Background(), repo, seedOptions{Username: "new", Credits: -1}, 4)
	assert.EqualError(t, err, "password is required for a new account")
	assert.Empty(t, repo.users)
}
