package apiclient

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginResponse() *types.LoginResponse {
	return &types.LoginResponse{
		Token: "tok-123",
		User:  &types.User{ID: uuid.New(), Email: "ed@studio.test", Role: "editor"},
	}
}

func storeRoundTrip(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &SessionData{
		Token:   "tok",
		UserID:  uuid.New(),
		Email:   "a@b.test",
		Role:    "talent",
		SavedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Role, got.Role)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))

	want.Token = "tok-2"
	require.NoError(t, store.Save(ctx, want))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.Token)

	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	storeRoundTrip(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "state", "session.db"))
	require.NoError(t, err)
	defer store.Close()

	storeRoundTrip(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	session := NewSession(first)
	require.NoError(t, session.Set(ctx, loginResponse()))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	token, err := NewSession(second).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestSession_TokenWithoutLogin(t *testing.T) {
	_, err := NewSession(NewMemoryStore()).Token(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSession_SetAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewMemoryStore())
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	resp := loginResponse()
	require.NoError(t, s.Set(ctx, resp))

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, cur.UserID)
	assert.Equal(t, "editor", cur.Role)
	assert.Equal(t, 9, cur.SavedAt.Hour())

	require.NoError(t, s.Clear(ctx))
	cur, err = s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestSession_SetRejectsEmptyResponse(t *testing.T) {
	s := NewSession(NewMemoryStore())
	assert.Error(t, s.Set(context.Background(), &types.LoginResponse{Token: "x"}))
	assert.Error(t, s.Set(context.Background(), nil))
}
