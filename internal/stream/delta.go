package stream

import "mockchat/internal/model"

// Delta returns the portion of batch with id strictly greater than cursor,
// order preserved. Store queries already filter on id, but a row that slips
// in below the cursor (store anomaly, clock skew on insert) must never be
// re-delivered, so the cursor is enforced here as well.
func Delta(cursor uint, batch []model.Message) []model.Message {
	out := batch[:0:0]
	for _, msg := range batch {
		if msg.ID > cursor {
			out = append(out, msg)
		}
	}
	return out
}

// NextCursor advances cursor to the highest id in batch. It never moves
// backward: an empty batch, or one holding only already-delivered ids,
// leaves the cursor unchanged.
func NextCursor(cursor uint, batch []model.Message) uint {
	next := cursor
	for _, msg := range batch {
		if msg.ID > next {
			next = msg.ID
		}
	}
	return next
}
