// Package share publishes a rendered list. It tries a configured HTTP
// endpoint first, falls back to the system clipboard, and reports an
// error only when both are unavailable.
package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/atotto/clipboard"

	"shoplist/internal/credentials"
	"shoplist/internal/utils"
)

// Method indicates how the text was delivered
type Method string

const (
	MethodEndpoint  Method = "endpoint"
	MethodClipboard Method = "clipboard"
)

// ErrUnavailable is returned when neither delivery method worked.
var ErrUnavailable = errors.New("no share method available")

// Sharer delivers exported text
type Sharer struct {
	endpoint    string
	account     string
	client      *http.Client
	creds       *credentials.Manager
	copyToClip  func(string) error
	clipPresent func() bool
}

// Option is a functional option for Sharer
type Option func(*Sharer)

// WithEndpoint sets the HTTP share endpoint. Empty disables it.
func WithEndpoint(url string) Option {
	return func(s *Sharer) {
		s.endpoint = url
	}
}

// WithAccount sets the credentials account used for the endpoint
// bearer token. Empty falls back to "default".
func WithAccount(account string) Option {
	return func(s *Sharer) {
		if account != "" {
			s.account = account
		}
	}
}

// WithHTTPClient overrides the HTTP client (tests)
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sharer) {
		s.client = c
	}
}

// WithCredentials sets the credentials manager used for the endpoint
// bearer token
func WithCredentials(m *credentials.Manager) Option {
	return func(s *Sharer) {
		s.creds = m
	}
}

// WithClipboard overrides the clipboard functions (tests)
func WithClipboard(write func(string) error, present func() bool) Option {
	return func(s *Sharer) {
		s.copyToClip = write
		s.clipPresent = present
	}
}

// NewSharer creates a sharer
func NewSharer(opts ...Option) *Sharer {
	s := &Sharer{
		account:     "default",
		client:      &http.Client{Timeout: 10 * time.Second},
		copyToClip:  clipboard.WriteAll,
		clipPresent: func() bool { return !clipboard.Unsupported },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Share delivers text, returning the method that succeeded
func (s *Sharer) Share(ctx context.Context, title, text string) (Method, error) {
	logger := utils.GetLogger()

	if s.endpoint != "" {
		if err := s.post(ctx, title, text); err == nil {
			return MethodEndpoint, nil
		} else {
			logger.Debug("share endpoint failed, trying clipboard: %v", err)
		}
	}

	if s.clipPresent() {
		if err := s.copyToClip(text); err == nil {
			return MethodClipboard, nil
		} else {
			logger.Debug("clipboard write failed: %v", err)
		}
	}

	return "", ErrUnavailable
}

func (s *Sharer) post(ctx context.Context, title, text string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBufferString(text))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-Share-Title", title)

	if s.creds != nil {
		info, err := s.creds.Get(ctx, "share", s.account)
		if err == nil && info.Found {
			req.Header.Set("Authorization", "Bearer "+info.Token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("share endpoint returned %s", resp.Status)
	}
	return nil
}
