package session

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pontoctl/internal/model"
)

func TestStoreLifecycle(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir())

	// Nothing persisted yet.
	sess, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	want := &model.Session{
		Token:        "tok",
		Client:       "cli",
		UID:          "user@example.com",
		SignInCount:  5,
		LastSignInIP: "10.0.0.1",
		LastSignInAt: 1730000000,
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.LoggedIn())

	// Replace on a fresh login.
	want.Token = "tok2"
	require.NoError(t, s.Save(want))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok2", got.Token)

	// Clear on logout; clearing twice is fine.
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	got, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeviceIDStable(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir())

	first, err := s.DeviceID()
	require.NoError(t, err)
	_, err = uuid.FromString(first)
	require.NoError(t, err, "device id must be a uuid")

	second, err := s.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second, "device id must survive restarts")
}
