package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"ai-news-digest/internal/observability/metrics"
)

// ErrNoCredential is returned by a CredentialStore that holds no token.
var ErrNoCredential = errors.New("mailer: no stored credential")

// CredentialState classifies a stored token before a send.
type CredentialState int

// Credential states.
const (
	NoCredential CredentialState = iota
	CredentialExpiredNoRefresh
	CredentialExpiredRefreshable
	CredentialValid
)

func (s CredentialState) String() string {
	switch s {
	case NoCredential:
		return "none"
	case CredentialExpiredNoRefresh:
		return "expired_no_refresh"
	case CredentialExpiredRefreshable:
		return "expired_refreshable"
	case CredentialValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Classify returns the state of tok. A nil or empty token is NoCredential.
func Classify(tok *oauth2.Token) CredentialState {
	switch {
	case tok == nil || (tok.AccessToken == "" && tok.RefreshToken == ""):
		return NoCredential
	case tok.Valid():
		return CredentialValid
	case tok.RefreshToken != "":
		return CredentialExpiredRefreshable
	default:
		return CredentialExpiredNoRefresh
	}
}

// CredentialStore persists the OAuth token between runs.
type CredentialStore interface {
	// Load returns ErrNoCredential when nothing is stored.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, tok *oauth2.Token) error
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

// AuthorizationProvider obtains a new token from the user.
type AuthorizationProvider interface {
	Authorize(ctx context.Context) (*oauth2.Token, error)
}

// Credential actions, used as metric labels.
const (
	actionReuse     = "reuse"
	actionRefresh   = "refresh"
	actionAuthorize = "authorize"
)

// CredentialManager resolves a usable token from the store, refreshing or
// re-authorizing as needed. The store is read once and written at most once
// per Obtain.
type CredentialManager struct {
	store      CredentialStore
	refresher  TokenRefresher
	authorizer AuthorizationProvider
}

// NewCredentialManager creates a CredentialManager.
func NewCredentialManager(store CredentialStore, refresher TokenRefresher, authorizer AuthorizationProvider) *CredentialManager {
	return &CredentialManager{store: store, refresher: refresher, authorizer: authorizer}
}

// Obtain returns a valid token. A token produced by refresh or authorization
// is saved before it is returned.
//
//	NoCredential                 -> Authorize -> save
//	CredentialExpiredNoRefresh   -> Authorize -> save
//	CredentialExpiredRefreshable -> Refresh (once) -> save
//	CredentialValid              -> returned as is
func (m *CredentialManager) Obtain(ctx context.Context) (*oauth2.Token, error) {
	tok, err := m.store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoCredential) {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	state := Classify(tok)
	switch state {
	case CredentialValid:
		metrics.RecordCredentialTransition(state.String(), actionReuse)
		return tok, nil

	case CredentialExpiredRefreshable:
		refreshed, err := m.refresher.Refresh(ctx, tok)
		if err == nil {
			metrics.RecordCredentialTransition(state.String(), actionRefresh)
			return m.persist(ctx, refreshed)
		}
		if !isRevoked(err) {
			return nil, fmt.Errorf("refresh credential: %w", err)
		}
		slog.WarnContext(ctx, "refresh token rejected, authorization required",
			slog.String("error", err.Error()))
	}

	fresh, err := m.authorizer.Authorize(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	metrics.RecordCredentialTransition(state.String(), actionAuthorize)
	return m.persist(ctx, fresh)
}

func (m *CredentialManager) persist(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if Classify(tok) != CredentialValid {
		return nil, errors.New("credential is not valid after acquisition")
	}
	if err := m.store.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	return tok, nil
}

// isRevoked reports an invalid_grant response: the refresh token was revoked
// or expired and only a new authorization can help.
func isRevoked(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re) && re.ErrorCode == "invalid_grant"
}

// OAuthRefresher refreshes tokens with an oauth2.Config.
type OAuthRefresher struct {
	config *oauth2.Config
}

// NewOAuthRefresher creates an OAuthRefresher.
func NewOAuthRefresher(config *oauth2.Config) *OAuthRefresher {
	return &OAuthRefresher{config: config}
}

// Refresh performs one refresh_token grant. The refresh token is carried
// over when the server does not rotate it.
func (r *OAuthRefresher) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	expired := &oauth2.Token{RefreshToken: tok.RefreshToken}
	return r.config.TokenSource(ctx, expired).Token()
}
