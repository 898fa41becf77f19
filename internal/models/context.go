package models

import "time"

// Context represents a GTD context ("@computer", "@office") that actions
// are linked to. Names are unique across the store.
type Context struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
