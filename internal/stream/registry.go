package stream

import (
	"errors"
	"sync"
)

// ErrDuplicateSession is returned by Register when viewer uniqueness is
// enforced and the (conversation, viewer) pair already has a live session.
var ErrDuplicateSession = errors.New("session already registered for this conversation and viewer")

type viewerKey struct {
	convKey string
	viewer  string
}

// Registry tracks live delivery sessions so the server can account for them
// and shut them down in bulk. Sessions poll independently; the registry never
// touches their state beyond Close.
type Registry struct {
	uniqueViewers bool

	mu       sync.Mutex
	sessions map[*Session]viewerKey
	byViewer map[viewerKey]int
}

// NewRegistry creates a registry. With uniqueViewers set, a second session
// for the same (conversation, viewer) pair is rejected; the default mirrors
// the observed behavior of allowing one stream per open client.
func NewRegistry(uniqueViewers bool) *Registry {
	return &Registry{
		uniqueViewers: uniqueViewers,
		sessions:      make(map[*Session]viewerKey),
		byViewer:      make(map[viewerKey]int),
	}
}

func (r *Registry) Register(s *Session) error {
	key := viewerKey{convKey: s.ConvKey(), viewer: s.Viewer()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s]; ok {
		return nil
	}
	if r.uniqueViewers && r.byViewer[key] > 0 {
		return ErrDuplicateSession
	}
	r.sessions[s] = key
	r.byViewer[key]++
	return nil
}

// Unregister removes the session. Removing an unknown session is a no-op.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.sessions[s]
	if !ok {
		return
	}
	delete(r.sessions, s)
	if r.byViewer[key] <= 1 {
		delete(r.byViewer, key)
	} else {
		r.byViewer[key]--
	}
}

// CloseAll closes every tracked session. Used at process shutdown so no
// polling timers outlive the server.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.Unlock()

	// Close outside the lock: a session's OnClose hook may call Unregister.
	for _, s := range snapshot {
		s.Close()
	}

	r.mu.Lock()
	for _, s := range snapshot {
		if key, ok := r.sessions[s]; ok {
			delete(r.sessions, s)
			if r.byViewer[key] <= 1 {
				delete(r.byViewer, key)
			} else {
				r.byViewer[key]--
			}
		}
	}
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
