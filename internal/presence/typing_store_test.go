package presence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func entryJSON(t *testing.T, role string, updatedAt time.Time) string {
	t.Helper()
	raw, err := json.Marshal(typingEntry{Role: role, UpdatedAt: updatedAt.UnixMilli()})
	require.NoError(t, err)
	return string(raw)
}

func TestFilterActiveWithinTTL(t *testing.T) {
	now := time.Now()
	raw := map[string]string{
		"alice": entryJSON(t, "trainer", now.Add(-1*time.Second)),
		"bob":   entryJSON(t, "agent", now.Add(-4*time.Second)),
	}

	active, stale := filterActive("ABC123", raw, now, 5*time.Second)
	require.Len(t, active, 2)
	require.Empty(t, stale)
	for _, signal := range active {
		require.Equal(t, "ABC123", signal.ConvKey)
	}
}

func TestFilterActiveExcludesExpired(t *testing.T) {
	now := time.Now()
	raw := map[string]string{
		"alice": entryJSON(t, "trainer", now.Add(-1*time.Second)),
		"bob":   entryJSON(t, "agent", now.Add(-6*time.Second)),
	}

	active, stale := filterActive("ABC123", raw, now, 5*time.Second)
	require.Len(t, active, 1)
	require.Equal(t, "alice", active[0].UserName)
	require.Equal(t, []string{"bob"}, stale)
}

func TestFilterActiveDropsGarbageEntries(t *testing.T) {
	now := time.Now()
	raw := map[string]string{
		"alice": "not json",
	}

	active, stale := filterActive("ABC123", raw, now, 5*time.Second)
	require.Empty(t, active)
	require.Equal(t, []string{"alice"}, stale)
}
