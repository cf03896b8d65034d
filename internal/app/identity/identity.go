/*
Package identity holds the client's single source of truth for who is signed in.

The Store keeps at most one current Identity, persists it in local storage under
a fixed key and restores it once at startup. Views receive the Store by injection
and only read from it or call SignOut.
*/
package identity

// Identity is the signed-in user's profile snapshot as the client holds it.
// JSON names match the persisted record so existing local storage keeps working.
type Identity struct {
	ID     string `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Tokens int    `json:"tokens"`
}

// PathID returns the id used in backend paths, or "unknown" when the record has none.
func (i Identity) PathID() string {
	if i.ID == "" {
		return "unknown"
	}
	return i.ID
}

// Result is the outcome of a credential sign-in.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Storage keys owned by the Store.
const (
	StorageKey     = "ss_user"
	BearerTokenKey = "ss_jwt"
)

// Demo account accepted by SignInWithPassword.
const (
	DemoEmail    = "demo@skillswap.dev"
	DemoPassword = "demo123"
)

const (
	guestName   = "Guest Learner"
	guestDomain = "skillswap.dev"
	guestAvatar = "https://i.pravatar.cc/100"
	guestTokens = 1

	demoID     = "demo-user-1"
	demoName   = "Demo User"
	demoAvatar = "https://i.pravatar.cc/100?u=demo-user"
	demoTokens = 42

	invalidCredentials = "Invalid credentials"
)
