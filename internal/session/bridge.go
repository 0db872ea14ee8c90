// Package session reconciles the identity-provider session with the data
// platform's bearer credential.
package session

import (
	"context"
	"fmt"

	"github.com/freightflow/gateway/internal/dataplane"
	"github.com/freightflow/gateway/internal/identity"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Source records whether a credential's platform token was freshly issued or
// read back from the store.
type Source string

const (
	SourceIssued Source = "issued"
	SourceCached Source = "cached"
)

// Credential is the unified authorization state handed to the caller.
// PlatformToken may be empty: identity login succeeded but the token exchange
// degraded. Business-data calls will then fail with an authorization error
// until a later exchange succeeds.
type Credential struct {
	User          identity.User `json:"user"`
	IdentityToken string        `json:"identity_token"`
	PlatformToken string        `json:"platform_token"`
	Source        Source        `json:"source"`
}

// Degraded reports whether the credential is missing its platform token.
func (c *Credential) Degraded() bool {
	return c.PlatformToken == ""
}

// Exchanger swaps a verified identity for a platform bearer token. The
// dataplane client satisfies this.
type Exchanger interface {
	SyncUser(ctx context.Context, identityUserID, email string) (*dataplane.SyncResult, error)
}

// Bridge derives and caches a single platform credential from the identity
// session. Identity failures are fatal to the calling operation; exchange
// failures only ever degrade.
type Bridge struct {
	provider  identity.Provider
	exchanger Exchanger
	store     *Store
	logger    *otelzap.Logger
}

// NewBridge creates a session bridge.
func NewBridge(provider identity.Provider, exchanger Exchanger, store *Store, logger *otelzap.Logger) *Bridge {
	return &Bridge{
		provider:  provider,
		exchanger: exchanger,
		store:     store,
		logger:    logger,
	}
}

// Login authenticates against the identity provider and exchanges the
// verified identity for a platform token. Identity rejection fails the
// operation; a failed exchange degrades to an empty platform token.
func (b *Bridge) Login(ctx context.Context, email, password string) (*Credential, error) {
	sess, err := b.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := b.store.SetSession(sess); err != nil {
		b.logger.Warn("failed to persist identity session", zap.Error(err))
	}
	return b.exchange(ctx, sess), nil
}

// Register creates a new identity account, then follows the login contract.
func (b *Bridge) Register(ctx context.Context, email, password string, profile identity.Profile) (*Credential, error) {
	sess, err := b.provider.SignUp(ctx, email, password, profile)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := b.store.SetSession(sess); err != nil {
		b.logger.Warn("failed to persist identity session", zap.Error(err))
	}
	return b.exchange(ctx, sess), nil
}

// Logout clears the platform credential, then terminates the identity
// session. Clearing comes first so a sign-out failure cannot leave a stale
// token behind.
func (b *Bridge) Logout(ctx context.Context) error {
	accessToken := ""
	if sess := b.store.Session(); sess != nil {
		accessToken = sess.AccessToken
	}
	if err := b.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if accessToken == "" {
		return nil
	}
	if err := b.provider.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Restore rebuilds the credential at process start. No identity session means
// unauthenticated (nil, nil). A cached platform token is reused without
// re-invoking the exchange; only a session with no cached token triggers one,
// degrading on failure.
func (b *Bridge) Restore(ctx context.Context) (*Credential, error) {
	sess := b.store.Session()
	if sess == nil {
		return nil, nil
	}

	if token := b.store.Token(); token != "" {
		return &Credential{
			User:          sess.User,
			IdentityToken: sess.AccessToken,
			PlatformToken: token,
			Source:        SourceCached,
		}, nil
	}
	return b.exchange(ctx, sess), nil
}

// IsAuthenticated reports presence of either an identity session or a cached
// platform token. It does not verify validity; expiry surfaces as a rejected
// business-data call.
func (b *Bridge) IsAuthenticated() bool {
	return b.store.Session() != nil || b.store.Token() != ""
}

// CurrentUser fetches the authenticated user from the identity provider.
func (b *Bridge) CurrentUser(ctx context.Context) (*identity.User, error) {
	sess := b.store.Session()
	if sess == nil {
		return nil, fmt.Errorf("no identity session")
	}
	return b.provider.GetUser(ctx, sess.AccessToken)
}

// exchange swaps the identity for a platform token and caches it. Exchange
// failure is logged, never returned.
func (b *Bridge) exchange(ctx context.Context, sess *identity.Session) *Credential {
	cred := &Credential{
		User:          sess.User,
		IdentityToken: sess.AccessToken,
		Source:        SourceIssued,
	}

	result, err := b.exchanger.SyncUser(ctx, sess.User.ID, sess.User.Email)
	if err != nil {
		b.logger.Warn("platform token exchange failed, continuing with identity session",
			zap.String("user_id", sess.User.ID),
			zap.Error(err),
		)
		return cred
	}
	if result.AuthToken != "" {
		if err := b.store.SetToken(result.AuthToken); err != nil {
			b.logger.Warn("failed to persist platform token", zap.Error(err))
		}
		cred.PlatformToken = result.AuthToken
	}
	if cred.User.Name == "" {
		cred.User.Name = result.User.Name
	}
	if cred.User.Company == "" {
		cred.User.Company = result.User.Company
	}
	return cred
}
