package model

import "time"

// TypingSignal is ephemeral presence, not a database row: upserted on
// activity, removed on stop, expired after the configured TTL.
type TypingSignal struct {
	ConvKey   string    `json:"conv_key"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}
