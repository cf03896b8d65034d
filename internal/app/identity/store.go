package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"skillswap/internal/app/storage"
	"skillswap/internal/pkg/auth/jwt"
	"skillswap/internal/pkg/errs"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/metrics"
	"skillswap/internal/pkg/randx"
)

// Store owns the current identity and its persisted copy.
type Store struct {
	storage   storage.Storage
	metrics   *metrics.Metrics
	demoDelay time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	// mu guards current, errMsg and loading. Readers never see a half-written identity
	// because sign-in swaps the whole pointer.
	mu      sync.RWMutex
	current *Identity
	errMsg  string
	loading int

	// writeMu orders mutations so memory and storage change in the same order.
	// Hydrate holds it too, so a sign-in or sign-out is never undone by a late restore.
	writeMu sync.Mutex

	// mutated is set under writeMu by the first sign-in or sign-out.
	mutated bool

	hydrateOnce sync.Once
	hydrated    chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics reports sign-in attempts to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithDemoDelay sets the artificial latency of the credential sign-in.
func WithDemoDelay(d time.Duration) Option {
	return func(s *Store) { s.demoDelay = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a signed-out, not yet hydrated Store backed by st.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		now:      time.Now,
		logger:   logx.Component("identity"),
		hydrated: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Hydrate restores the persisted identity. Only the first call does any work.
// A missing, unreadable or corrupt record leaves the store signed out, and a
// sign-in or sign-out that already happened wins over the persisted record.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		defer close(s.hydrated)

		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		if s.mutated {
			return
		}

		raw, err := s.storage.Get(ctx, StorageKey)
		if errors.Is(err, storage.ErrNotFound) {
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Could not read persisted identity; starting signed out")
			return
		}

		var restored *Identity
		if err := json.Unmarshal([]byte(raw), &restored); err != nil || restored == nil {
			s.logger.Warn().Err(err).Msg("Persisted identity is corrupt; starting signed out")
			return
		}

		s.mu.Lock()
		s.current = restored
		s.mu.Unlock()

		s.logger.Info().Str("uid", restored.ID).Msg("Identity restored from local storage")
	})
}

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool {
	select {
	case <-s.hydrated:
		return true
	default:
		return false
	}
}

// WaitHydrated blocks until Hydrate has completed or ctx ends.
func (s *Store) WaitHydrated(ctx context.Context) error {
	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns a copy of the signed-in identity.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Loading reports whether a sign-in is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Error returns the message left by the last failed credential sign-in, if any.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// begin marks a sign-in as started and clears the previous error.
func (s *Store) begin() {
	s.mu.Lock()
	s.loading++
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

// SignInWithProvider signs in as a freshly generated guest, standing in for an
// external identity provider. The new identity holds one token.
func (s *Store) SignInWithProvider(ctx context.Context) (Identity, error) {
	s.begin()
	defer s.end()

	email, err := randx.GuestEmail(guestDomain)
	if err != nil {
		s.metrics.SignIn("provider", false)
		return Identity{}, fmt.Errorf("provider sign-in: %w", err)
	}

	guest := Identity{
		ID:     randx.IdentityID(),
		Name:   guestName,
		Email:  email,
		Avatar: guestAvatar,
		Tokens: guestTokens,
	}

	s.replace(ctx, guest)
	s.metrics.SignIn("provider", true)
	s.logger.Info().Str("uid", guest.ID).Msg("Signed in through provider")

	return guest, nil
}

// SignInWithPassword checks email and password against the single demo account.
// Email matching ignores case. On mismatch the store keeps its identity and
// records a user-facing error message.
func (s *Store) SignInWithPassword(ctx context.Context, email, password string) Result {
	s.begin()
	defer s.end()

	if s.demoDelay > 0 {
		timer := time.NewTimer(s.demoDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return Result{OK: false, Error: ctx.Err().Error()}
		}
	}

	if strings.ToLower(email) != DemoEmail || password != DemoPassword {
		message := errs.NewError(errs.ErrInvalidCredentials, DemoEmail, DemoPassword).Message

		s.mu.Lock()
		s.errMsg = message
		s.mu.Unlock()

		s.metrics.SignIn("password", false)
		s.logger.Warn().Msg("Demo sign-in rejected")
		return Result{OK: false, Error: invalidCredentials}
	}

	s.replace(ctx, Identity{
		ID:     demoID,
		Name:   demoName,
		Email:  DemoEmail,
		Avatar: demoAvatar,
		Tokens: demoTokens,
	})
	s.metrics.SignIn("password", true)
	s.logger.Info().Str("uid", demoID).Msg("Signed in with demo credentials")

	return Result{OK: true}
}

// SignOut forgets the identity in memory and in storage. Safe when already signed out.
func (s *Store) SignOut(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mutated = true

	s.mu.Lock()
	wasSignedIn := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Delete(context.WithoutCancel(ctx), StorageKey); err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete persisted identity")
	}

	if wasSignedIn {
		s.logger.Info().Msg("Signed out")
	}
}

// replace installs next as the current identity and persists it.
// A storage failure is logged; the in-memory sign-in still stands. The write
// outlives a cancelled request so memory and storage do not diverge.
func (s *Store) replace(ctx context.Context, next Identity) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mutated = true

	s.mu.Lock()
	s.current = &next
	s.mu.Unlock()

	raw, err := json.Marshal(next)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode identity")
		return
	}

	if err := s.storage.Set(context.WithoutCancel(ctx), StorageKey, string(raw)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist identity")
	}
}

// BearerToken returns the optional backend token kept under BearerTokenKey.
// Expired JWTs are still returned; the backend decides what to accept.
func (s *Store) BearerToken(ctx context.Context) (string, bool) {
	token, err := s.storage.Get(ctx, BearerTokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Could not read bearer token")
		}
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	if jwt.IsExpired(token, s.now()) {
		s.logger.Warn().Msg("Stored bearer token has expired")
	}

	return token, true
}

// SetBearerToken stores token, or removes the record when token is blank.
func (s *Store) SetBearerToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.storage.Delete(ctx, BearerTokenKey)
	}
	return s.storage.Set(ctx, BearerTokenKey, token)
}
