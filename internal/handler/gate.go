package handler

import (
	"context"
	"net/http"

	"skillswap/internal/app/identity"
	"skillswap/internal/pkg/errs"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/resp"
)

// Gatekeeper is the part of the identity store the gate consults.
type Gatekeeper interface {
	WaitHydrated(ctx context.Context) error
	Current() (identity.Identity, bool)
}

// RequireIdentity serves the protected subtree only once hydration has finished
// and someone is signed in. Everyone else is sent to the landing page, or gets
// a 401 envelope when they asked for JSON.
func RequireIdentity(ids Gatekeeper) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ids.WaitHydrated(r.Context()); err != nil {
				logx.Debug("Request gave up waiting for identity hydration", "path", r.URL.Path)
				return
			}

			if _, ok := ids.Current(); !ok {
				if resp.WantsJSON(r) {
					resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
					return
				}
				seeOther(w, r, "/")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
