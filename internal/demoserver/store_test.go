package demoserver

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenStore(":memory:", bcrypt.MinCost)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStore_CreateUserAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u, err := st.CreateUser(ctx, "vadim@gmail.com", "Vadim", "password_first")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Vadim", u.Username)

	got, token, err := st.Authenticate(ctx, "vadim@gmail.com", "password_first")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)

	sessUser, err := st.UserForSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "vadim@gmail.com", sessUser.Email)

	_, _, err = st.Authenticate(ctx, "vadim@gmail.com", "wrong-password")
	assert.ErrorIs(t, err, ErrIncorrectEmailOrPassword)
	_, _, err = st.Authenticate(ctx, "nobody@example.com", "password_first")
	assert.ErrorIs(t, err, ErrIncorrectEmailOrPassword)
}

func TestStore_CreateUserRejects(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, err := st.CreateUser(ctx, "dima@mail.ru", "Dima", "password_second")
	require.NoError(t, err)

	cases := []struct {
		name, email, username, password string
		want                            error
	}{
		{"duplicate email", "dima@mail.ru", "Other", "password_x", ErrRecordExists},
		{"duplicate username", "other@mail.ru", "Dima", "password_x", ErrRecordExists},
		{"bad email", "not-an-email", "Other", "password_x", ErrInvalidRecord},
		{"named email", "Dima <d@mail.ru>", "Other", "password_x", ErrInvalidRecord},
		{"empty username", "x@mail.ru", " ", "password_x", ErrInvalidRecord},
		{"short password", "x@mail.ru", "X", "12345", ErrInvalidRecord},
	}
	for _, tc := range cases {
		_, err := st.CreateUser(ctx, tc.email, tc.username, tc.password)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.UserForSession(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = st.UserForSession(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = st.CreateUser(ctx, "alex@asd.en", "Alex", "password_third")
	require.NoError(t, err)
	_, first, err := st.Authenticate(ctx, "alex@asd.en", "password_third")
	require.NoError(t, err)
	_, second, err := st.Authenticate(ctx, "alex@asd.en", "password_third")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "each login opens a fresh session")
}

func TestStore_TweetsAndSubscriptions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	vadim, err := st.CreateUser(ctx, "vadim@gmail.com", "Vadim", "password_first")
	require.NoError(t, err)
	dima, err := st.CreateUser(ctx, "dima@mail.ru", "Dima", "password_second")
	require.NoError(t, err)
	alex, err := st.CreateUser(ctx, "alex@asd.en", "Alex", "password_third")
	require.NoError(t, err)

	_, err = st.CreateTweet(ctx, vadim.ID, "one")
	require.NoError(t, err)
	_, err = st.CreateTweet(ctx, dima.ID, "two")
	require.NoError(t, err)
	tw, err := st.CreateTweet(ctx, vadim.ID, "three")
	require.NoError(t, err)
	assert.Equal(t, "three", tw.Message)
	assert.Equal(t, vadim.ID, tw.UserID)

	_, err = st.CreateTweet(ctx, vadim.ID, "")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	mine, err := st.UserTweets(ctx, vadim.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, mine)

	require.NoError(t, st.Subscribe(ctx, alex.ID, vadim.ID))
	require.NoError(t, st.Subscribe(ctx, alex.ID, dima.ID))
	assert.ErrorIs(t, st.Subscribe(ctx, alex.ID, dima.ID), ErrRecordExists)

	feed, err := st.SubscriptionTweets(ctx, alex.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, feed)

	subs, err := st.Subscriptions(ctx, alex.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dima", "Vadim"}, subs)

	empty, err := st.SubscriptionTweets(ctx, vadim.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty, "empty feeds encode as [] not null")
}

func TestStore_FindUserByUsername(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, err := st.FindUserByUsername(ctx, "Vadim")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = st.CreateUser(ctx, "vadim@gmail.com", "Vadim", "password_first")
	require.NoError(t, err)
	u, err := st.FindUserByUsername(ctx, "Vadim")
	require.NoError(t, err)
	assert.Equal(t, "vadim@gmail.com", u.Email)
}

func TestStore_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "demo.db")

	st, err := OpenStore(path, bcrypt.MinCost)
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "vadim@gmail.com", "Vadim", "password_first")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := OpenStore(path, bcrypt.MinCost)
	require.NoError(t, err)
	defer reopened.Close()
	_, _, err = reopened.Authenticate(ctx, "vadim@gmail.com", "password_first")
	assert.NoError(t, err)
}

func TestStore_ConcurrentDuplicatesReportExists(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	const workers = 8

	run := func(fn func() error) (created, exists int) {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := fn()
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, ErrRecordExists):
					exists++
				default:
					assert.Failf(t, "unexpected error", "%v", err)
				}
			}()
		}
		wg.Wait()
		return created, exists
	}

	created, exists := run(func() error {
		_, err := st.CreateUser(ctx, "vadim@gmail.com", "Vadim", "password_first")
		return err
	})
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, exists)

	dima, err := st.CreateUser(ctx, "dima@mail.ru", "Dima", "password_second")
	require.NoError(t, err)
	vadim, err := st.FindUserByUsername(ctx, "Vadim")
	require.NoError(t, err)

	created, exists = run(func() error { return st.Subscribe(ctx, dima.ID, vadim.ID) })
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, exists)
}
