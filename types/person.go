package types

import "time"

// Person represents a registered contest participant.
// Sensitive fields are encrypted at rest; this struct always carries the
// decrypted values.
type Person struct {
	// ID is the unique identifier of the person.
	ID int `json:"id" db:"id"`

	// Name is the participant's display name, also used as the login name.
	Name string `json:"name" db:"name"`

	// Age in years. Valid range is 1 through 120.
	Age int `json:"age" db:"age"`

	// Phone is the participant's phone number.
	Phone string `json:"phone" db:"phone"`

	// SecurityLevel is the role tier: 1 is the lowest privilege,
	// 3 is administrator.
	SecurityLevel int `json:"security_level" db:"security_level"`

	// Password is the login password. This field is never exposed in
	// API responses.
	Password string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the person was registered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role tiers gating route access.
const (
	LevelParticipant = 1
	LevelJudge       = 2
	LevelAdmin       = 3
)
