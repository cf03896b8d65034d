package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/app/backend"
	"skillswap/internal/app/chat"
	"skillswap/internal/app/identity"
	"skillswap/internal/app/storage"
	"skillswap/internal/app/views"
	"skillswap/internal/configs"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/metrics"
)

func TestMain(m *testing.M) {
	logx.Discard()
	os.Exit(m.Run())
}

// fakeBackend answers every backend endpoint. When down is set, the REST
// endpoints fail with 503.
type fakeBackend struct {
	*httptest.Server
	down atomic.Bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	mux := http.NewServeMux()
	rest := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if fb.down.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("/match", rest(`{"results":[{"_id":"m1","name":"Grace Hopper","skills_teach":["React"],"overlap":["React"]}]}`))
	mux.HandleFunc("/users", rest(`{"id":"created-1"}`))
	mux.HandleFunc("/dashboard/", rest(`{"tokens":7,"transactions":[{"_id":"t1","reason":"Taught Go","delta":1}],"upcoming":[],"completed":[]}`))
	mux.HandleFunc("/sessions", rest(`[{"_id":"s1","skill":"Rust","status":"pending","teacher_id":"t","learner_id":"l"}]`))
	mux.HandleFunc("/admin/users", rest(`[{"_id":"a1","name":"Root","email":"root@skillswap.dev","role":"admin","active":true}]`))
	mux.HandleFunc("/ws/chat/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var in map[string]any
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			_ = conn.WriteJSON(in)
		}
	})

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

type testApp struct {
	handler http.Handler
	deps    *AppDeps
	backend *fakeBackend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fb := newFakeBackend(t)
	m := metrics.New()

	store := identity.NewStore(storage.NewMemory(), identity.WithMetrics(m))
	store.Hydrate(context.Background())

	client := backend.NewClient(fb.URL, 2*time.Second, m)
	channel := chat.NewChannel(fb.URL, chat.WithMetrics(m))
	t.Cleanup(channel.Close)

	deps := &AppDeps{
		Config:   &configs.AppConfig{Environment: "test"},
		Identity: store,
		Views:    views.NewSet(client, store),
		Chat:     channel,
		Metrics:  m,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testApp{handler: Router(ctx, deps), deps: deps, backend: fb}
}

func (a *testApp) do(t *testing.T, method, target string, form url.Values, acceptJSON bool) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if acceptJSON {
		r.Header.Set("Accept", "application/json")
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func (a *testApp) signInDemo(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", url.Values{"email": {identity.DemoEmail}, "password": {identity.DemoPassword}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/app", rec.Header().Get("Location"))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Code, env.Message, env.Data
}

func TestProtectedRoutesRedirectWhenSignedOut(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/app", "/app/match", "/app/chat", "/app/sessions", "/app/dashboard", "/app/admin"} {
		rec := app.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}
}

func TestProtectedJSONAnswersUnauthorized(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/app/chat/messages", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, _, _ := decodeEnvelope(t, rec)
	assert.Equal(t, 3002, code)
}

func TestUnknownPathsRedirectHome(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/nowhere", nil, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	app.signInDemo(t)
	rec = app.do(t, http.MethodGet, "/app/nowhere", nil, false)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAppIndexRedirectsToDashboard(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodGet, "/app", nil, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/dashboard", rec.Header().Get("Location"))
}

func TestLandingShowsSignInWhenSignedOut(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login with Google")
	assert.Contains(t, rec.Body.String(), `action="/auth/login"`)
}

func TestProviderSignIn(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/provider", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app", rec.Header().Get("Location"))

	current, ok := app.deps.Identity.Current()
	require.True(t, ok)
	assert.Equal(t, "Guest Learner", current.Name)
	assert.Equal(t, 1, current.Tokens)

	rec = app.do(t, http.MethodGet, "/", nil, false)
	assert.Contains(t, rec.Body.String(), "Hi, Guest Learner")
}

func TestDemoLoginFailureShowsMessage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"demo@skillswap.dev"}, "password": {"wrong"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, ok := app.deps.Identity.Current()
	assert.False(t, ok)

	rec = app.do(t, http.MethodGet, "/", nil, false)
	assert.Contains(t, rec.Body.String(), "Invalid email or password (try demo@skillswap.dev / demo123)")
}

func TestDemoLoginJSON(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"x@y.z"}, "password": {"demo123"}}, true)
	code, message, _ := decodeEnvelope(t, rec)
	assert.Equal(t, 3001, code)
	assert.Equal(t, "Invalid email or password (try demo@skillswap.dev / demo123)", message)

	rec = app.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"Demo@SkillSwap.dev"}, "password": {"demo123"}}, true)
	code, _, data := decodeEnvelope(t, rec)
	assert.Equal(t, 0, code)

	var signedIn identity.Identity
	require.NoError(t, json.Unmarshal(data, &signedIn))
	assert.Equal(t, 42, signedIn.Tokens)
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"email": {"x@y.z"}, "password": {"nope"}}
	for range LoginBurst {
		rec := app.do(t, http.MethodPost, "/auth/login", form, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	rec := app.do(t, http.MethodPost, "/auth/login", form, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestIdentityEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/identity", nil, true)
	_, _, data := decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"user":null}`, string(data))

	app.signInDemo(t)

	rec = app.do(t, http.MethodGet, "/api/identity", nil, true)
	_, _, data = decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"user":{"uid":"demo-user-1","name":"Demo User","email":"demo@skillswap.dev","avatar":"https://i.pravatar.cc/100?u=demo-user","tokens":42}}`, string(data))
}

func TestLogoutSignsOutAndClosesChat(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	app.do(t, http.MethodGet, "/app/chat", nil, false)
	require.Equal(t, chat.StateOpen, app.deps.Chat.State())

	rec := app.do(t, http.MethodPost, "/auth/logout", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, ok := app.deps.Identity.Current()
	assert.False(t, ok)
	assert.Equal(t, chat.StateUnmounted, app.deps.Chat.State())

	rec = app.do(t, http.MethodGet, "/app/dashboard", nil, false)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestDashboardPage(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodGet, "/app/dashboard", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Token Balance")
	assert.Contains(t, body, `<div class="tokens">7</div>`)
	assert.Contains(t, body, "Taught Go (1)")
	assert.NotContains(t, body, views.NoticeDashboard)
}

func TestDashboardPageWhenBackendIsDown(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)
	app.backend.down.Store(true)

	rec := app.do(t, http.MethodGet, "/app/dashboard", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="tokens">0</div>`)
	assert.Contains(t, body, "Dashboard is unavailable right now.")
}

func TestMatchPageRunsDefaultSearch(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodGet, "/app/match", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="React, Python"`)
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, "Matches: React")
}

func TestMatchSearchJSON(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodPost, "/app/match", url.Values{"q": {" , ,Node.js,"}}, true)
	_, _, data := decodeEnvelope(t, rec)

	var out struct {
		Skills []string `json:"skills"`
		Notice string   `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"Node.js"}, out.Skills)
	assert.Empty(t, out.Notice)
}

func TestCreateProfile(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodPost, "/app/profile", url.Values{"name": {"Ada"}, "email": {"ada@skillswap.dev"}, "teach": {"Go"}, "learn": {"Rust"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app/match", rec.Header().Get("Location"))

	rec = app.do(t, http.MethodGet, "/app/match", nil, false)
	assert.Contains(t, rec.Body.String(), "Profile created: created-1")
}

func TestSessionsAndAdminPages(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodGet, "/app/sessions", nil, false)
	assert.Contains(t, rec.Body.String(), "Rust")
	assert.Contains(t, rec.Body.String(), "Teacher: t")

	rec = app.do(t, http.MethodGet, "/app/admin", nil, false)
	assert.Contains(t, rec.Body.String(), "root@skillswap.dev")
	assert.Contains(t, rec.Body.String(), "role: admin")
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodGet, "/app/chat", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chat.DefaultRoom, app.deps.Chat.Room())

	rec = app.do(t, http.MethodPost, "/app/chat/send", url.Values{"text": {"hello"}}, true)
	_, _, data := decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"sent":true}`, string(data))

	require.Eventually(t, func() bool { return len(app.deps.Chat.Messages()) == 1 }, time.Second, 5*time.Millisecond)

	rec = app.do(t, http.MethodGet, "/app/chat/messages", nil, true)
	_, _, data = decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"room":"public-demo","state":"open","messages":[{"text":"hello","sender_id":"me"}]}`, string(data))

	rec = app.do(t, http.MethodPost, "/app/chat/room", url.Values{"room": {"go-study"}}, false)
	assert.Equal(t, "/app/chat", rec.Header().Get("Location"))
	assert.Equal(t, "go-study", app.deps.Chat.Room())
	assert.Empty(t, app.deps.Chat.Messages())
}

func TestChatSendWhileClosedIsNoop(t *testing.T) {
	app := newTestApp(t)
	app.signInDemo(t)

	rec := app.do(t, http.MethodPost, "/app/chat/send", url.Values{"text": {"lost"}}, true)
	code, _, data := decodeEnvelope(t, rec)
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"sent":false}`, string(data))
	assert.Empty(t, app.deps.Chat.Messages())
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, _, data := decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"status":"ok","service":"SkillSwap Client","hydrated":true}`, string(data))

	app.signInDemo(t)

	rec = app.do(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `skillswap_identity_sign_ins_total{method="password",result="success"} 1`)
}
