package auth

import "time"

// User is a credential record as persisted in the users document. The JSON
// field names are the stored contract; older installations wrote a raw
// "password" field instead of "passwordHash", which is why both appear here.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	// LegacyPassword is the transitional plaintext field. It is cleared the
	// first time the user logs in successfully (migration-on-read).
	LegacyPassword string    `json:"password,omitempty"`
	Name           string    `json:"name"`
	Company        string    `json:"company,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PublicView returns the subset of the record that is safe to hold in
// application state and return to clients. Never the credential fields.
func (u *User) PublicView() *PublicUser {
	return &PublicUser{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Company: u.Company,
	}
}

// PublicUser is the exposed representation of an authenticated user.
type PublicUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Company   string
	SessionID string
}

// CredentialKind tags the form a stored credential takes. The forms are
// mutually exclusive; legacy forms are upgraded to bcrypt on the first
// successful login.
type CredentialKind int

const (
	// CredentialNone means the record carries no usable credential.
	CredentialNone CredentialKind = iota
	// CredentialBcrypt is the current scheme: a bcrypt hash with its
	// per-user salt embedded.
	CredentialBcrypt
	// CredentialLegacyDigest is the old scheme: lowercase hex of
	// SHA-256(password + fixed application salt).
	CredentialLegacyDigest
	// CredentialPlaintext marks the oldest records: the raw password in
	// the "password" field.
	CredentialPlaintext
)

// CredentialKind reports which credential form the record carries.
func (u *User) CredentialKind() CredentialKind {
	switch {
	case isBcryptHash(u.PasswordHash):
		return CredentialBcrypt
	case isLegacyDigest(u.PasswordHash):
		return CredentialLegacyDigest
	case u.LegacyPassword != "":
		return CredentialPlaintext
	default:
		return CredentialNone
	}
}
