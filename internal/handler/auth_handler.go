/*
Package handler provides the HTTP handlers and routing of the SkillSwap client.

This file covers sign-in and sign-out. Both sign-in paths answer with a redirect for
form posts and with the JSON envelope when the caller asks for JSON.
*/
package handler

import (
	"net/http"

	"skillswap/internal/app/identity"
	"skillswap/internal/pkg/errs"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/req"
	"skillswap/internal/pkg/resp"
)

// landingFeatures is the feature list shown on the landing page.
var landingFeatures = []string{
	"Google Auth", "Profiles", "Token Ledger", "Matching", "Connections",
	"Notifications", "Real-time Chat", "Sessions + Whiteboard", "AI Coach", "Admin Panel",
}

type landingPage struct {
	Loading  bool
	Error    string
	Features []string
}

// HandleLanding renders the public landing page.
func HandleLanding(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Identity.WaitHydrated(r.Context()); err != nil {
			return
		}

		data := pageData{
			Title: "Peer-to-Peer Learning",
			Page: landingPage{
				Loading:  deps.Identity.Loading(),
				Error:    deps.Identity.Error(),
				Features: landingFeatures,
			},
		}
		if current, ok := deps.Identity.Current(); ok {
			data.User = &current
		}

		render(w, r, "landing", data)
	}
}

// HandleProviderSignIn signs in as a generated guest.
func HandleProviderSignIn(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guest, err := deps.Identity.SignInWithProvider(r.Context())
		if err != nil {
			logx.Error(err, "Provider sign-in failed")
			if resp.WantsJSON(r) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			seeOther(w, r, "/")
			return
		}

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, guest)
			return
		}
		seeOther(w, r, "/app")
	}
}

// HandleLogin checks the demo credentials. Values are used exactly as submitted.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := req.FormValues(w, r, "email", "password")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result := deps.Identity.SignInWithPassword(r.Context(), input["email"], input["password"])

		if resp.WantsJSON(r) {
			if !result.OK {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials, identity.DemoEmail, identity.DemoPassword))
				return
			}
			current, _ := deps.Identity.Current()
			resp.RespondSuccess(w, r, current)
			return
		}

		if !result.OK {
			seeOther(w, r, "/")
			return
		}
		seeOther(w, r, "/app")
	}
}

// HandleLogout signs out. Leaving the protected pages also tears the chat channel down.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Identity.SignOut(r.Context())
		deps.Chat.Close()

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, nil)
			return
		}
		seeOther(w, r, "/")
	}
}

// HandleIdentity answers the current identity, or null when signed out.
func HandleIdentity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Identity.WaitHydrated(r.Context()); err != nil {
			return
		}

		current, ok := deps.Identity.Current()
		if !ok {
			resp.RespondSuccess(w, r, map[string]any{"user": nil})
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"user": current})
	}
}
