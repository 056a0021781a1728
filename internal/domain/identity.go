package domain

// Identity is the resolved, authenticated user record. It is produced only
// by the session resolver from a successful /user/ lookup, is immutable once
// constructed, and is discarded wholesale on logout or token rejection.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Registration carries the fields of a registration submission. Password
// confirmation is checked server-side; the client forwards both values.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
