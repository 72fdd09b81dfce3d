package share

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoplist/internal/credentials"
)

// noClipboard disables the clipboard fallback
func noClipboard() Option {
	return WithClipboard(nil, func() bool { return false })
}

// fakeClipboard captures clipboard writes
type fakeClipboard struct {
	text   string
	writes int
	err    error
}

func (f *fakeClipboard) option() Option {
	return WithClipboard(func(s string) error {
		f.writes++
		if f.err != nil {
			return f.err
		}
		f.text = s
		return nil
	}, func() bool { return true })
}

func TestShareViaEndpoint(t *testing.T) {
	var gotBody string
	var gotTitle string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotTitle = r.Header.Get("X-Share-Title")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewSharer(WithEndpoint(srv.URL), noClipboard())

	method, err := s.Share(context.Background(), "Weekly Run", "[ ] Milk — 3 L")
	if err != nil {
		t.Fatalf("Share error: %v", err)
	}
	if method != MethodEndpoint {
		t.Errorf("method = %q, want %q", method, MethodEndpoint)
	}
	if gotBody != "[ ] Milk — 3 L" {
		t.Errorf("posted body = %q", gotBody)
	}
	if gotTitle != "Weekly Run" {
		t.Errorf("X-Share-Title = %q", gotTitle)
	}
	if gotContentType != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

// TestShareSendsBearerToken verifies a stored token is attached as an
// Authorization header.
func TestShareSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	keyring := credentials.NewMockKeyring()
	creds := credentials.NewManager(credentials.WithKeyring(keyring))
	if err := creds.Set(context.Background(), "share", "default", "tok123"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	s := NewSharer(WithEndpoint(srv.URL), WithCredentials(creds), noClipboard())
	if _, err := s.Share(context.Background(), "t", "text"); err != nil {
		t.Fatalf("Share error: %v", err)
	}

	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok123")
	}
}

// TestShareUsesConfiguredAccount verifies the bearer token is looked
// up under the configured account, not always "default".
func TestShareUsesConfiguredAccount(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	keyring := credentials.NewMockKeyring()
	creds := credentials.NewManager(credentials.WithKeyring(keyring))
	if err := creds.Set(context.Background(), "share", "default", "default-tok"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := creds.Set(context.Background(), "share", "work", "work-tok"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	s := NewSharer(WithEndpoint(srv.URL), WithAccount("work"), WithCredentials(creds), noClipboard())
	if _, err := s.Share(context.Background(), "t", "text"); err != nil {
		t.Fatalf("Share error: %v", err)
	}

	if gotAuth != "Bearer work-tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer work-tok")
	}
}

// TestShareFallsBackToClipboard verifies a failing endpoint falls
// through to the clipboard.
func TestShareFallsBackToClipboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	clip := &fakeClipboard{}
	s := NewSharer(WithEndpoint(srv.URL), clip.option())

	method, err := s.Share(context.Background(), "t", "the list")
	if err != nil {
		t.Fatalf("Share error: %v", err)
	}
	if method != MethodClipboard {
		t.Errorf("method = %q, want %q", method, MethodClipboard)
	}
	if clip.text != "the list" {
		t.Errorf("clipboard text = %q", clip.text)
	}
}

// TestShareNoEndpointUsesClipboard verifies the clipboard is used
// directly when no endpoint is configured.
func TestShareNoEndpointUsesClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	s := NewSharer(clip.option())

	method, err := s.Share(context.Background(), "t", "the list")
	if err != nil {
		t.Fatalf("Share error: %v", err)
	}
	if method != MethodClipboard {
		t.Errorf("method = %q, want %q", method, MethodClipboard)
	}
}

// TestShareUnavailable verifies the sentinel error when every method
// fails.
func TestShareUnavailable(t *testing.T) {
	s := NewSharer(noClipboard())

	if _, err := s.Share(context.Background(), "t", "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Share err = %v, want ErrUnavailable", err)
	}
}

// TestShareClipboardWriteFailure verifies a present but failing
// clipboard still yields the sentinel error.
func TestShareClipboardWriteFailure(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	s := NewSharer(clip.option())

	if _, err := s.Share(context.Background(), "t", "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Share err = %v, want ErrUnavailable", err)
	}
	if clip.writes != 1 {
		t.Errorf("clipboard writes = %d, want 1", clip.writes)
	}
}
