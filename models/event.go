package models

import "time"

type Change string

const (
	ChangeCreated Change = "created"
	ChangeUpdated Change = "updated"
	ChangeDeleted Change = "deleted"
)

// ChangeEvent announces a committed mutation. For deletes Record holds the
// last known state.
type ChangeEvent struct {
	Kind   Kind      `json:"kind"`
	Change Change    `json:"change"`
	Record Record    `json:"record"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}
