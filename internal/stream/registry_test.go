package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func registrySession(convKey, viewer string) *Session {
	return NewSession(SessionConfig{
		ConvKey:           convKey,
		Viewer:            viewer,
		Messages:          &fakeMessageSource{},
		Typing:            &fakeTypingSource{},
		Emitter:           &recordingEmitter{},
		PollInterval:      10 * time.Millisecond,
		KeepAliveInterval: time.Hour,
	})
}

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry(false)
	s1 := registrySession("ABC123", "alice")
	s2 := registrySession("ABC123", "bob")

	require.NoError(t, r.Register(s1))
	require.NoError(t, r.Register(s2))
	require.Equal(t, 2, r.Len())

	// Re-registering the same session is a no-op.
	require.NoError(t, r.Register(s1))
	require.Equal(t, 2, r.Len())

	r.Unregister(s1)
	require.Equal(t, 1, r.Len())
	r.Unregister(s1)
	require.Equal(t, 1, r.Len())
}

func TestRegistryAllowsDuplicateViewersByDefault(t *testing.T) {
	r := NewRegistry(false)
	require.NoError(t, r.Register(registrySession("ABC123", "alice")))
	require.NoError(t, r.Register(registrySession("ABC123", "alice")))
	require.Equal(t, 2, r.Len())
}

func TestRegistryRejectsDuplicateViewersWhenEnforced(t *testing.T) {
	r := NewRegistry(true)
	s1 := registrySession("ABC123", "alice")
	require.NoError(t, r.Register(s1))

	err := r.Register(registrySession("ABC123", "alice"))
	require.ErrorIs(t, err, ErrDuplicateSession)

	// Other viewers and conversations are unaffected.
	require.NoError(t, r.Register(registrySession("ABC123", "bob")))
	require.NoError(t, r.Register(registrySession("XYZ789", "alice")))

	// Once the first session leaves, the pair is free again.
	r.Unregister(s1)
	require.NoError(t, r.Register(registrySession("ABC123", "alice")))
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry(false)
	s1 := registrySession("ABC123", "alice")
	s2 := registrySession("XYZ789", "bob")
	require.NoError(t, r.Register(s1))
	require.NoError(t, r.Register(s2))

	r.CloseAll()
	require.Equal(t, 0, r.Len())
	require.Equal(t, StateClosed, s1.State())
	require.Equal(t, StateClosed, s2.State())
}

func TestRegistryCloseAllWithOnCloseUnregister(t *testing.T) {
	r := NewRegistry(false)
	s := NewSession(SessionConfig{
		ConvKey:           "ABC123",
		Viewer:            "alice",
		Messages:          &fakeMessageSource{},
		Typing:            &fakeTypingSource{},
		Emitter:           &recordingEmitter{},
		PollInterval:      10 * time.Millisecond,
		KeepAliveInterval: time.Hour,
	})
	s.onClose = func(sess *Session) { r.Unregister(sess) }
	require.NoError(t, r.Register(s))

	r.CloseAll()
	require.Equal(t, 0, r.Len())
	require.Equal(t, StateClosed, s.State())
}
