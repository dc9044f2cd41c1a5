package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// FileCredentialStore keeps the token in a JSON file with 0600 permissions.
// It reads both its own format and the token.json written by Google's
// Python client library.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore creates a store for path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the credential file path.
func (s *FileCredentialStore) Path() string { return s.path }

// storedToken is the union of both file layouts.
type storedToken struct {
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Expiry       string `json:"expiry,omitempty"`

	// Python client layout.
	Token string `json:"token,omitempty"`
}

// Load reads the token. A missing or empty file is ErrNoCredential.
func (s *FileCredentialStore) Load(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoCredential
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	tok := &oauth2.Token{
		AccessToken:  st.AccessToken,
		TokenType:    st.TokenType,
		RefreshToken: st.RefreshToken,
	}
	if tok.AccessToken == "" {
		tok.AccessToken = st.Token
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if st.Expiry != "" {
		expiry, err := parseExpiry(st.Expiry)
		if err != nil {
			return nil, fmt.Errorf("parse %s expiry: %w", s.path, err)
		}
		tok.Expiry = expiry
	}
	return tok, nil
}

// Save writes tok atomically: a temp file in the same directory is renamed
// over the target.
func (s *FileCredentialStore) Save(_ context.Context, tok *oauth2.Token) error {
	st := storedToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		st.Expiry = tok.Expiry.UTC().Format(time.RFC3339Nano)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// parseExpiry accepts RFC 3339 and the zone-less ISO form some Python
// client versions write (interpreted as UTC).
func parseExpiry(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999", v, time.UTC)
}
