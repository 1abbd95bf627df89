package domain

import "time"

// Theme values for the stored display preference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Account is the profile echoed back by the backend after registration.
type Account struct {
	UserName  string `json:"user_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
}

// Identity is what the access token says about its holder. It is decoded
// without signature verification and is used for display only.
type Identity struct {
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
