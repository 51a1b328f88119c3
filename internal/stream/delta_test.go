package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mockchat/internal/model"
)

func msgs(ids ...uint) []model.Message {
	out := make([]model.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Message{ID: id, ConvKey: "ABC123"})
	}
	return out
}

func TestDeltaFiltersDeliveredIDs(t *testing.T) {
	batch := Delta(2, msgs(1, 2, 3, 4))
	require.Equal(t, msgs(3, 4), batch)
}

func TestDeltaEmpty(t *testing.T) {
	require.Empty(t, Delta(5, msgs(1, 2, 3)))
	require.Empty(t, Delta(0, nil))
}

func TestDeltaPreservesOrder(t *testing.T) {
	batch := Delta(0, msgs(1, 2, 3))
	require.Equal(t, msgs(1, 2, 3), batch)
}

func TestNextCursorAdvancesToMaxID(t *testing.T) {
	require.Equal(t, uint(3), NextCursor(0, msgs(1, 2, 3)))
	require.Equal(t, uint(7), NextCursor(7, msgs(1, 2, 3)))
	require.Equal(t, uint(4), NextCursor(4, nil))
}

func TestNextCursorNeverMovesBackward(t *testing.T) {
	// A late insert below the cursor must not pull it back.
	require.Equal(t, uint(10), NextCursor(10, msgs(2)))
}
