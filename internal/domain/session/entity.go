// internal/domain/session/entity.go
package session

// StorageSlot is the per-client key the session blob is persisted under
const StorageSlot = "auth-storage"

// User is the signed-in customer's profile as reported by the backend
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	OrderCount int    `json:"orderCount"`
}

// Session is the client-held record of the current identity and token.
// It is persisted verbatim as {token, isAuthenticated, user}.
type Session struct {
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user,omitempty"`
}

// normalize re-derives IsAuthenticated from the token
func (s Session) normalize() Session {
	s.IsAuthenticated = s.Token != ""
	if !s.IsAuthenticated {
		s.Token = ""
	}
	return s
}
