package types

// Session is the authenticated identity carried by the session cookie. The
// values are a snapshot taken at login time; a later change to the underlying
// person does not affect an already-issued session.
type Session struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
}
