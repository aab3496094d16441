package types

import "time"

// Entry is a single contest submission with its vote tallies. Entries are
// immutable once created and always owned by the session user that
// submitted them.
type Entry struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	ItemName     string    `json:"item_name" db:"item_name"`
	NumExcellent int       `json:"num_excellent" db:"num_excellent"`
	NumOk        int       `json:"num_ok" db:"num_ok"`
	NumBad       int       `json:"num_bad" db:"num_bad"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
