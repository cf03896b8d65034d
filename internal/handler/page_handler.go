package handler

import (
	"net/http"

	"skillswap/internal/app/views"
	"skillswap/internal/pkg/req"
	"skillswap/internal/pkg/resp"
)

type matchPage struct {
	Search  views.State[views.MatchResult]
	Profile views.State[string]
}

// HandleMatchPage renders the mentor search. The first visit runs the default search.
func HandleMatchPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := deps.Views.Match.State()
		if !search.Loaded && !search.Loading {
			search = deps.Views.Match.Mount(r.Context())
		}

		render(w, r, "match", shellPage(deps, "Match", matchPage{
			Search:  search,
			Profile: deps.Views.Profile.State(),
		}))
	}
}

// HandleMatchSearch runs a search for the submitted query.
func HandleMatchSearch(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := req.FormValues(w, r, "q")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		state := deps.Views.Match.Search(r.Context(), input["q"])

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, map[string]any{
				"skills":  state.Value.Skills,
				"results": state.Value.Mentors,
				"notice":  state.Notice,
			})
			return
		}
		seeOther(w, r, "/app/match")
	}
}

// HandleCreateProfile creates a demo profile from the submitted form.
func HandleCreateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := req.FormValues(w, r, "name", "email", "teach", "learn")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		state := deps.Views.Profile.Create(r.Context(), input["name"], input["email"], input["teach"], input["learn"])

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, map[string]any{"id": state.Value, "notice": state.Notice})
			return
		}
		seeOther(w, r, "/app/match")
	}
}

// HandleDashboardPage loads and renders the signed-in user's dashboard.
func HandleDashboardPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := deps.Views.Dashboard.Load(r.Context())
		render(w, r, "dashboard", shellPage(deps, "Dashboard", state))
	}
}

// HandleSessionsPage loads and renders the session list.
func HandleSessionsPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := deps.Views.Sessions.Load(r.Context())
		render(w, r, "sessions", shellPage(deps, "Sessions", state))
	}
}

// HandleAdminPage loads and renders the admin user list.
func HandleAdminPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := deps.Views.Admin.Load(r.Context())
		render(w, r, "admin", shellPage(deps, "Admin Panel", state))
	}
}
