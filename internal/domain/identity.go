package domain

// IdentityKind tags the active variant of a CartIdentity.
type IdentityKind string

const (
	IdentityUser    IdentityKind = "user"
	IdentitySession IdentityKind = "session"
)

// CartIdentity scopes cart requests to one shopper. Exactly one of UserID or
// SessionID is set, matching Kind.
type CartIdentity struct {
	Kind      IdentityKind
	UserID    ID
	SessionID string
}

func UserIdentity(id ID) CartIdentity {
	return CartIdentity{Kind: IdentityUser, UserID: id}
}

func SessionIdentity(id string) CartIdentity {
	return CartIdentity{Kind: IdentitySession, SessionID: id}
}

// Valid reports whether exactly one variant is populated.
func (c CartIdentity) Valid() bool {
	switch c.Kind {
	case IdentityUser:
		return !c.UserID.IsZero() && c.SessionID == ""
	case IdentitySession:
		return c.SessionID != "" && c.UserID.IsZero()
	default:
		return false
	}
}

// Params returns the single request key/value pair for the identity.
func (c CartIdentity) Params() map[string]string {
	if c.Kind == IdentityUser {
		return map[string]string{"user_id": c.UserID.String()}
	}
	return map[string]string{"session_id": c.SessionID}
}

// Fields returns the identity as request body fields.
func (c CartIdentity) Fields() map[string]interface{} {
	if c.Kind == IdentityUser {
		return map[string]interface{}{"user_id": c.UserID}
	}
	return map[string]interface{}{"session_id": c.SessionID}
}
