// Package bridge keeps the local session in step with identity-provider
// sign-in and sign-out notifications.
package bridge

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbitdesk/portal/internal/service"
	"github.com/orbitdesk/portal/internal/session"
)

// Principal is what the identity provider reports about the signed-in
// subject.
type Principal struct {
	UID         string
	Email       string
	PhoneNumber string
	// ProviderIDs carries the federation metadata, e.g. "microsoft.com".
	ProviderIDs []string
}

// ResolverClient resolves a principal into a session user. In-process
// deployments use *service.Resolver directly; remote clients wrap the
// HTTP endpoint.
type ResolverClient interface {
	Resolve(ctx context.Context, in service.ResolveInput) (*service.ResolveResult, error)
}

// PushClient is the optional push-notification SDK surface. Every call
// is best-effort; the observer tolerates absence and timeouts.
type PushClient interface {
	PlayerID(ctx context.Context) (string, error)
	SubscriptionID(ctx context.Context) (string, error)
	SetContact(ctx context.Context, email, phone string) error
	SetTag(ctx context.Context, key, value string) error
}

// Listener receives session transitions. A nil user means signed out.
type Listener interface {
	AuthChanged(user *session.User, token string)
}

// Options configures the observer. Resolver and Store are required.
type Options struct {
	Resolver    ResolverClient
	Store       session.Store
	Push        PushClient
	CallingCode string
	// PushWait bounds how long the push client may take to report its
	// identifiers before sign-in proceeds without them.
	PushWait time.Duration
	// OnDenied surfaces the blocking access-denied notice.
	OnDenied func(message string)
	// SignOut invokes the identity provider's own sign-out.
	SignOut func(ctx context.Context) error
	Logger  zerolog.Logger
}

// Observer holds the in-memory session and processes provider
// transitions one at a time.
type Observer struct {
	resolver    ResolverClient
	store       session.Store
	push        PushClient
	callingCode string
	pushWait    time.Duration
	onDenied    func(message string)
	signOut     func(ctx context.Context) error
	logger      zerolog.Logger

	busy    atomic.Bool
	dropped atomic.Int64

	mu        sync.RWMutex
	user      *session.User
	token     string
	listeners []Listener
}

// New creates an observer. Call Init to restore any persisted session.
func New(opts Options) *Observer {
	pushWait := opts.PushWait
	if pushWait <= 0 {
		pushWait = time.Second
	}
	return &Observer{
		resolver:    opts.Resolver,
		store:       opts.Store,
		push:        opts.Push,
		callingCode: opts.CallingCode,
		pushWait:    pushWait,
		onDenied:    opts.OnDenied,
		signOut:     opts.SignOut,
		logger:      opts.Logger,
	}
}

// Init restores the persisted session, if any.
func (o *Observer) Init(ctx context.Context) error {
	user, token, err := session.Load(ctx, o.store)
	if err != nil {
		if err == session.ErrNoValue {
			return nil
		}
		return err
	}
	o.setSession(user, token)
	return nil
}

// Subscribe registers a listener for session transitions.
func (o *Observer) Subscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// CurrentUser returns the in-memory session user, or nil.
func (o *Observer) CurrentUser() *session.User {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.user
}

// CurrentToken returns the session token, or "".
func (o *Observer) CurrentToken() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.token
}

// IsAuthenticated reports whether both user and token are present.
func (o *Observer) IsAuthenticated() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.user != nil && o.token != ""
}

// Dropped returns how many transitions were discarded by the
// re-entrancy guard.
func (o *Observer) Dropped() int64 {
	return o.dropped.Load()
}

// HandleSignedIn processes a provider signed-in notification. A
// notification arriving while another transition is in flight is
// dropped; the provider delivers the true final state in a later one.
func (o *Observer) HandleSignedIn(ctx context.Context, p Principal) {
	if !o.busy.CompareAndSwap(false, true) {
		o.dropped.Add(1)
		o.logger.Warn().Str("uid", p.UID).Msg("bridge: signed-in dropped, transition in flight")
		return
	}
	defer o.busy.Store(false)

	provider := deriveProvider(p)
	phone := service.NormalizePhone(p.PhoneNumber, o.callingCode)
	playerID, subscriptionID := o.pushIdentifiers(ctx)

	result, err := o.resolver.Resolve(ctx, service.ResolveInput{
		Email:          p.Email,
		PhoneNumber:    phone,
		AuthProvider:   provider,
		PlayerID:       playerID,
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		o.clear(ctx)
		if deniedErr, ok := err.(*service.AccessDeniedError); ok {
			o.logger.Warn().Str("reason", string(deniedErr.Reason)).Msg("bridge: access denied")
			if o.onDenied != nil {
				o.onDenied(deniedErr.Message)
			}
			return
		}
		o.logger.Error().Err(err).Msg("bridge: resolution failed")
		return
	}

	if err := session.Save(ctx, o.store, &result.User, result.Token); err != nil {
		o.logger.Error().Err(err).Msg("bridge: session persist failed")
	}
	o.setSession(&result.User, result.Token)

	o.pushContact(ctx, result.User)
}

// HandleSignedOut processes a provider signed-out notification.
func (o *Observer) HandleSignedOut(ctx context.Context) {
	if !o.busy.CompareAndSwap(false, true) {
		o.dropped.Add(1)
		o.logger.Warn().Msg("bridge: signed-out dropped, transition in flight")
		return
	}
	defer o.busy.Store(false)

	o.clear(ctx)
}

// Login installs a session produced outside the provider-driven flow.
func (o *Observer) Login(ctx context.Context, user *session.User, token string) error {
	if err := session.Save(ctx, o.store, user, token); err != nil {
		return err
	}
	o.setSession(user, token)
	return nil
}

// Logout signs out of the identity provider, then clears local state.
func (o *Observer) Logout(ctx context.Context) error {
	if o.signOut != nil {
		if err := o.signOut(ctx); err != nil {
			return err
		}
	}
	o.clear(ctx)
	return nil
}

func (o *Observer) setSession(user *session.User, token string) {
	o.mu.Lock()
	o.user = user
	o.token = token
	listeners := make([]Listener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, l := range listeners {
		l.AuthChanged(user, token)
	}
}

func (o *Observer) clear(ctx context.Context) {
	if err := o.store.Clear(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("bridge: session clear failed")
	}
	o.setSession(nil, "")
}

// pushIdentifiers reads the push client identifiers with a bounded
// wait. They are not required for correctness.
func (o *Observer) pushIdentifiers(ctx context.Context) (playerID, subscriptionID string) {
	if o.push == nil {
		return "", ""
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.pushWait)
	defer cancel()

	if id, err := o.push.PlayerID(waitCtx); err == nil {
		playerID = id
	} else {
		o.logger.Debug().Err(err).Msg("bridge: player id unavailable")
	}
	if id, err := o.push.SubscriptionID(waitCtx); err == nil {
		subscriptionID = id
	} else {
		o.logger.Debug().Err(err).Msg("bridge: subscription id unavailable")
	}
	return playerID, subscriptionID
}

// pushContact forwards contact fields and the employee tag to the push
// SDK. Failures are logged, never propagated.
func (o *Observer) pushContact(ctx context.Context, user session.User) {
	if o.push == nil {
		return
	}
	if err := o.push.SetContact(ctx, user.Email, user.PhoneNumber); err != nil {
		o.logger.Warn().Err(err).Msg("bridge: push contact update failed")
	}
	if user.Org.EmployeeID != "" {
		if err := o.push.SetTag(ctx, "employeeId", user.Org.EmployeeID); err != nil {
			o.logger.Warn().Err(err).Msg("bridge: push tag update failed")
		}
	}
}

// deriveProvider picks the auth-provider tag from the principal's
// identifiers: phone wins, then known federation markers, then email.
func deriveProvider(p Principal) string {
	if strings.TrimSpace(p.PhoneNumber) != "" {
		return session.ProviderPhone
	}
	for _, id := range p.ProviderIDs {
		if strings.Contains(strings.ToLower(id), "microsoft") {
			return session.ProviderMicrosoft
		}
	}
	return session.ProviderEmail
}
