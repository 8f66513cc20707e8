package auth

// Service is the auth/session contract consumed by the gateway and HTTP
// handlers.
type Service interface {
	Register(username, password string) (playerID uint64, sessionToken string, err error)
	Login(username, password string) (playerID uint64, sessionToken string, err error)
	ResolveSession(token string) (playerID uint64, username string, ok bool)
	Logout(token string)
	Close() error
}
