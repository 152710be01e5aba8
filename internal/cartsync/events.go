package cartsync

// SessionEventKind names an identity transition.
type SessionEventKind int

const (
	SessionLoggedIn SessionEventKind = iota + 1
	SessionLoggedOut
	// SessionExpired is raised when the credential stops being accepted.
	SessionExpired
)

func (k SessionEventKind) String() string {
	switch k {
	case SessionLoggedIn:
		return "logged_in"
	case SessionLoggedOut:
		return "logged_out"
	case SessionExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type SessionEvent struct {
	Kind   SessionEventKind
	UserID string
}
