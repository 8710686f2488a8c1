package auth

import "time"

// Account-enabled flag values. Only administrative status toggles change
// these; login is rejected outright for inactive accounts.
const (
	AccountActive   = "active"
	AccountInactive = "inactive"
)

// Session status values. Mutated exclusively by the auth flows.
const (
	SessionLoggedOn  = "loggedOn"
	SessionLoggedOff = "loggedOff"
)

// MinPasswordLen is enforced before any user lookup happens.
const MinPasswordLen = 6

// User is one record in the user directory.
//
// JSON tags follow the wire contract of the original API (idUsuario, correo,
// ...), which existing clients depend on.
type User struct {
	ID            string    `json:"idUsuario"`
	Role          Role      `json:"rol"`
	FirstName     string    `json:"nombres"`
	LastName      string    `json:"apellidos"`
	Email         string    `json:"correo"`
	PasswordHash  string    `json:"-"`
	AccountStatus string    `json:"estado"`
	SessionStatus string    `json:"status"`
	CreatedAt     time.Time `json:"fecha_creado"`
}

// FullName returns the display name used in audit entries.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session records which device and which token currently represent a valid
// session for a user. At most one exists per user id; the token field is the
// single source of truth for whether a bearer token is still honored.
type Session struct {
	UserID       string    `json:"idUsuario"`
	Device       string    `json:"dispositivo"`
	Token        string    `json:"-"`
	LastActivity time.Time `json:"last_activity"`
}

// AuditEntry is an append-only record of a state-changing action.
type AuditEntry struct {
	ID         string    `json:"idLog"`
	UserID     string    `json:"idUsuario"`
	UserName   string    `json:"nombreUsuario"`
	Role       Role      `json:"rol"`
	Action     string    `json:"accion"`
	OccurredAt time.Time `json:"fecha"`
}
