// Package session manages the persisted authentication cookies.
// The session is an explicit object: stages read it, and only the
// refresh operation mutates it from response headers.
package session

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// sessionTTL is how long a refreshed session id stays valid.
const sessionTTL = time.Hour

// Cookie is one persisted cookie value.
type Cookie struct {
	Value   string    `yaml:"value"`
	Expires time.Time `yaml:"expires,omitempty"`
}

// Session holds the site authentication state.
type Session struct {
	UserID    *Cookie `yaml:"c_userid,omitempty"`
	UserKey   *Cookie `yaml:"c_userkey,omitempty"`
	SessionID *Cookie `yaml:"session_id,omitempty"`

	path string
}

// Path returns the default session file location under the XDG data dir.
func Path() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kani", "session.yml"), nil
}

// Load reads the session file. A missing file yields an empty session.
func Load(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// Save writes the session file, creating the directory if needed.
func (s *Session) Save() error {
	if s.path == "" {
		return fmt.Errorf("session has no backing file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Valid reports whether the session id exists and has not expired.
func (s *Session) Valid(now time.Time) bool {
	return s.SessionID != nil && !s.SessionID.Expires.IsZero() && now.Before(s.SessionID.Expires)
}

// Authenticated reports whether user credentials are present.
func (s *Session) Authenticated() bool {
	return s.UserID != nil && s.UserKey != nil
}

// CookieHeader builds the request Cookie header. The locale cookie is
// always sent; credentials and session id only when present/valid.
func (s *Session) CookieHeader(now time.Time) string {
	pairs := []string{"c_locale=enUS"}
	if s.Authenticated() {
		pairs = append(pairs,
			"c_userid="+s.UserID.Value,
			"c_userkey="+s.UserKey.Value,
		)
	}
	if s.Valid(now) {
		pairs = append(pairs, "session_id="+s.SessionID.Value)
	}
	return strings.Join(pairs, "; ")
}

// Refresh applies Set-Cookie headers from a response. On the auth
// response every credential is taken; otherwise only cookies the
// session is missing (or whose session id expired) are adopted.
// It returns the names of the cookies that were updated; the caller
// persists when the list is non-empty.
func (s *Session) Refresh(header http.Header, isAuth bool, now time.Time) []string {
	var updated []string

	resp := http.Response{Header: header}
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "c_userid":
			if isAuth || s.UserID == nil {
				s.UserID = &Cookie{Value: c.Value}
				updated = append(updated, "c_userid")
			}
		case "c_userkey":
			if isAuth || s.UserKey == nil {
				s.UserKey = &Cookie{Value: c.Value}
				updated = append(updated, "c_userkey")
			}
		case "session_id":
			if isAuth || !s.Valid(now) {
				s.SessionID = &Cookie{
					Value:   c.Value,
					Expires: now.Add(sessionTTL),
				}
				updated = append(updated, "session_id")
			}
		}
	}

	return updated
}
