package domain

// Role distinguishes the three account types of the marketplace.
type Role string

const (
	RoleConsumer Role = "consumidor"
	RoleProducer Role = "productor"
	RoleAdmin    Role = "administrador"
)

// ThemeMode is the persisted display preference.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// User is the identity part of a session, as returned by the login
// endpoint and persisted locally between runs.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"nombre"`
	Role        Role   `json:"rol"`
}

// Session groups everything the client keeps about the authenticated
// user for the current run. Token is an opaque bearer credential.
type Session struct {
	User  User
	Token string
	Theme ThemeMode
}

// Authenticated reports whether a bearer token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
