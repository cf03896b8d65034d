/*
Package views holds the page-level data fetchers: match search, profile creation,
dashboard, sessions and the admin list.

Each fetcher owns its result, loading flag and notice, calls one backend endpoint
per trigger, and falls back to an empty value with a short notice when the call
fails. No fetcher retries, caches or shares state with another.
*/
package views

import (
	"context"

	"github.com/rs/zerolog"

	"skillswap/internal/app/backend"
	"skillswap/internal/app/identity"
	"skillswap/internal/pkg/logx"
)

// DefaultMatchQuery is the query a fresh match view searches for.
const DefaultMatchQuery = "React, Python"

// Notices shown when a fetch fails.
const (
	NoticeMatch     = "Search failed. Please try again."
	NoticeProfile   = "Could not create your profile. Please try again."
	NoticeDashboard = "Dashboard is unavailable right now."
	NoticeSessions  = "Sessions are unavailable right now."
	NoticeAdmin     = "The user list is unavailable right now."
)

// Backend is the part of the backend client the views use.
type Backend interface {
	SearchMentors(ctx context.Context, skills []string) ([]backend.Mentor, error)
	CreateProfile(ctx context.Context, profile backend.NewProfile) (string, error)
	Dashboard(ctx context.Context, identityID string) (backend.Dashboard, error)
	ListSessions(ctx context.Context) ([]backend.Session, error)
	AdminUsers(ctx context.Context, bearerToken string) ([]backend.AdminUser, error)
}

// Identity is the read side of the identity store.
type Identity interface {
	Current() (identity.Identity, bool)
	BearerToken(ctx context.Context) (string, bool)
}

// Set bundles one instance of every fetcher for a client.
type Set struct {
	Match     *MatchView
	Profile   *ProfileView
	Dashboard *DashboardView
	Sessions  *SessionsView
	Admin     *AdminView
}

// NewSet wires every fetcher to api and ids.
func NewSet(api Backend, ids Identity) *Set {
	return &Set{
		Match:     NewMatchView(api),
		Profile:   NewProfileView(api),
		Dashboard: NewDashboardView(api, ids),
		Sessions:  NewSessionsView(api),
		Admin:     NewAdminView(api, ids),
	}
}

// MatchView searches mentors by the skills the user wants to learn.
type MatchView struct {
	api    Backend
	logger zerolog.Logger
	slot   *slot[MatchResult]
}

// MatchResult is what the match page renders.
type MatchResult struct {
	Query   string
	Skills  []string
	Mentors []backend.Mentor
}

func NewMatchView(api Backend) *MatchView {
	return &MatchView{
		api:    api,
		logger: logx.Component("view.match"),
		slot: newSlot(MatchResult{
			Query:   DefaultMatchQuery,
			Skills:  ParseSkills(DefaultMatchQuery),
			Mentors: []backend.Mentor{},
		}),
	}
}

// State returns the current snapshot.
func (v *MatchView) State() State[MatchResult] {
	return v.slot.snapshot()
}

// Mount repeats the search for the current query, as opening the page does.
func (v *MatchView) Mount(ctx context.Context) State[MatchResult] {
	return v.Search(ctx, v.State().Value.Query)
}

// Search runs the query q. While a search is in flight further calls return the current state.
func (v *MatchView) Search(ctx context.Context, q string) State[MatchResult] {
	if !v.slot.begin() {
		return v.slot.snapshot()
	}

	skills := ParseSkills(q)
	mentors, err := v.api.SearchMentors(ctx, skills)
	if v.slot.abandoned(ctx, err) {
		return v.slot.snapshot()
	}

	notice := ""
	if err != nil {
		v.logger.Warn().Err(err).Strs("skills", skills).Msg("Mentor search failed")
		notice = NoticeMatch
	}

	v.slot.finish(MatchResult{Query: q, Skills: skills, Mentors: mentors}, notice)
	return v.slot.snapshot()
}

// ProfileView creates a demo profile on the backend.
type ProfileView struct {
	api    Backend
	logger zerolog.Logger
	slot   *slot[string]
}

func NewProfileView(api Backend) *ProfileView {
	return &ProfileView{
		api:    api,
		logger: logx.Component("view.profile"),
		slot:   newSlot(""),
	}
}

// State returns the current snapshot; Value is the id of the created profile.
func (v *ProfileView) State() State[string] {
	return v.slot.snapshot()
}

// Create posts a profile. teach and learn are comma-separated skill lists.
func (v *ProfileView) Create(ctx context.Context, name, email, teach, learn string) State[string] {
	if !v.slot.begin() {
		return v.slot.snapshot()
	}

	id, err := v.api.CreateProfile(ctx, backend.NewProfile{
		Name:        name,
		Email:       email,
		SkillsTeach: ParseSkills(teach),
		SkillsLearn: ParseSkills(learn),
	})
	if v.slot.abandoned(ctx, err) {
		return v.slot.snapshot()
	}

	notice := ""
	if err != nil {
		v.logger.Warn().Err(err).Msg("Profile creation failed")
		id = ""
		notice = NoticeProfile
	}

	v.slot.finish(id, notice)
	return v.slot.snapshot()
}

// DashboardView loads the signed-in user's balance and sessions.
type DashboardView struct {
	api    Backend
	ids    Identity
	logger zerolog.Logger
	slot   *slot[backend.Dashboard]
}

func NewDashboardView(api Backend, ids Identity) *DashboardView {
	return &DashboardView{
		api:    api,
		ids:    ids,
		logger: logx.Component("view.dashboard"),
		slot:   newSlot(backend.EmptyDashboard()),
	}
}

func (v *DashboardView) State() State[backend.Dashboard] {
	return v.slot.snapshot()
}

// Load fetches the dashboard of the current identity. Without an identity nothing is fetched.
func (v *DashboardView) Load(ctx context.Context) State[backend.Dashboard] {
	current, ok := v.ids.Current()
	if !ok {
		return v.slot.snapshot()
	}

	if !v.slot.begin() {
		return v.slot.snapshot()
	}

	dash, err := v.api.Dashboard(ctx, current.PathID())
	if v.slot.abandoned(ctx, err) {
		return v.slot.snapshot()
	}

	notice := ""
	if err != nil {
		v.logger.Warn().Err(err).Str("uid", current.ID).Msg("Dashboard load failed")
		dash = backend.EmptyDashboard()
		notice = NoticeDashboard
	}

	v.slot.finish(dash, notice)
	return v.slot.snapshot()
}

// SessionsView lists sessions.
type SessionsView struct {
	api    Backend
	logger zerolog.Logger
	slot   *slot[[]backend.Session]
}

func NewSessionsView(api Backend) *SessionsView {
	return &SessionsView{
		api:    api,
		logger: logx.Component("view.sessions"),
		slot:   newSlot([]backend.Session{}),
	}
}

func (v *SessionsView) State() State[[]backend.Session] {
	return v.slot.snapshot()
}

// Load fetches the session list.
func (v *SessionsView) Load(ctx context.Context) State[[]backend.Session] {
	if !v.slot.begin() {
		return v.slot.snapshot()
	}

	sessions, err := v.api.ListSessions(ctx)
	if v.slot.abandoned(ctx, err) {
		return v.slot.snapshot()
	}

	notice := ""
	if err != nil {
		v.logger.Warn().Err(err).Msg("Session list failed")
		sessions = []backend.Session{}
		notice = NoticeSessions
	}

	v.slot.finish(sessions, notice)
	return v.slot.snapshot()
}

// AdminView lists users for administrators.
type AdminView struct {
	api    Backend
	ids    Identity
	logger zerolog.Logger
	slot   *slot[[]backend.AdminUser]
}

func NewAdminView(api Backend, ids Identity) *AdminView {
	return &AdminView{
		api:    api,
		ids:    ids,
		logger: logx.Component("view.admin"),
		slot:   newSlot([]backend.AdminUser{}),
	}
}

func (v *AdminView) State() State[[]backend.AdminUser] {
	return v.slot.snapshot()
}

// Load fetches the user list, attaching the stored bearer token when there is one.
func (v *AdminView) Load(ctx context.Context) State[[]backend.AdminUser] {
	if !v.slot.begin() {
		return v.slot.snapshot()
	}

	token, _ := v.ids.BearerToken(ctx)
	users, err := v.api.AdminUsers(ctx, token)
	if v.slot.abandoned(ctx, err) {
		return v.slot.snapshot()
	}

	notice := ""
	if err != nil {
		v.logger.Warn().Err(err).Bool("with_token", token != "").Msg("Admin user list failed")
		users = []backend.AdminUser{}
		notice = NoticeAdmin
	}

	v.slot.finish(users, notice)
	return v.slot.snapshot()
}
