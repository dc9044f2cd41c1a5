package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// ErrInteractiveAuthDisabled is returned by HeadlessAuthorizer.
var ErrInteractiveAuthDisabled = errors.New("mailer: interactive authorization disabled; provision the token file with -authorize")

// LoadOAuthConfig reads an installed-app client secret file and returns an
// oauth2.Config scoped to gmail.send.
func LoadOAuthConfig(clientSecretFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	return cfg, nil
}

// HeadlessAuthorizer refuses to authorize. It is used where no browser is
// available, such as cron.
type HeadlessAuthorizer struct{}

// Authorize always returns ErrInteractiveAuthDisabled.
func (HeadlessAuthorizer) Authorize(context.Context) (*oauth2.Token, error) {
	return nil, ErrInteractiveAuthDisabled
}

// LocalServerAuthorizer runs the OAuth installed-app flow: it prints the
// consent URL, receives the redirect on a loopback listener bound to an
// ephemeral port, checks state and exchanges the code with PKCE.
type LocalServerAuthorizer struct {
	config  *oauth2.Config
	out     io.Writer
	timeout time.Duration

	// OpenURL, when set, is called with the consent URL (for example to
	// launch a browser). Its error is logged and the URL is still printed.
	OpenURL func(url string) error
}

// NewLocalServerAuthorizer creates a LocalServerAuthorizer that prints the
// consent URL to out and waits at most timeout for the redirect.
func NewLocalServerAuthorizer(config *oauth2.Config, out io.Writer, timeout time.Duration) *LocalServerAuthorizer {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &LocalServerAuthorizer{config: config, out: out, timeout: timeout}
}

type authResult struct {
	code string
	err  error
}

// Authorize blocks until the user completes consent, ctx is done, or the
// timeout elapses.
func (a *LocalServerAuthorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for oauth redirect: %w", err)
	}

	cfg := *a.config
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.New().String()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier))

	results := make(chan authResult, 1)
	srv := &http.Server{
		Handler:           a.callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- authResult{err: err}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(a.out, "Open the following URL in a browser to authorize Gmail access:\n\n%s\n\n", authURL)
	if a.OpenURL != nil {
		if err := a.OpenURL(authURL); err != nil {
			slog.Warn("could not open browser", slog.String("error", err.Error()))
		}
	}

	var res authResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func (a *LocalServerAuthorizer) callbackHandler(state string, results chan<- authResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res authResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}
		if res.err != nil {
			http.Error(w, "Authorization failed. You can close this window.", http.StatusForbidden)
			return
		}
		_, _ = io.WriteString(w, "Authorization complete. You can close this window.")
	})
}
