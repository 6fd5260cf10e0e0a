package domain

// User is one entry of the credential store, keyed by lowercased username
type User struct {
	Password  string `json:"password"`   // bcrypt hash of the password
	CreatedAt string `json:"created_at"` // RFC3339 creation timestamp
}

// Users maps a normalized username to its credentials, the shape of users.json
type Users map[string]User
