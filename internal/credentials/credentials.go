// Package credentials provides secret storage and retrieval for
// external services (the share endpoint) using OS-native keyrings
// with fallback to environment variables.
package credentials

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Source indicates where a token was retrieved from
type Source string

const (
	SourceKeyring     Source = "keyring"
	SourceEnvironment Source = "environment"
	SourceNone        Source = "none"
)

// TokenInfo contains token information returned by Get()
type TokenInfo struct {
	Source  Source // Where the token came from
	Service string // Service name (e.g., "share")
	Account string // Account identifier
	Token   string // The secret itself
	Found   bool   // Whether a token was found
}

// JSON serializes the token info (secret excluded)
func (t *TokenInfo) JSON() ([]byte, error) {
	output := struct {
		Service string `json:"service"`
		Account string `json:"account"`
		Source  string `json:"source"`
		Found   bool   `json:"found"`
	}{
		Service: t.Service,
		Account: t.Account,
		Source:  string(t.Source),
		Found:   t.Found,
	}
	return json.Marshal(output)
}

// Keyring is the interface for keyring operations
type Keyring interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// Manager handles token operations
type Manager struct {
	keyring Keyring
}

// ManagerOption is a functional option for Manager
type ManagerOption func(*Manager)

// WithKeyring sets a custom keyring implementation
func WithKeyring(k Keyring) ManagerOption {
	return func(m *Manager) {
		m.keyring = k
	}
}

// NewManager creates a new token manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		keyring: &systemKeyring{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// normalizeService normalizes service names to lowercase
func normalizeService(service string) string {
	return strings.ToLower(strings.TrimSpace(service))
}

// keyringService returns the keyring service name for a service
func keyringService(service string) string {
	return fmt.Sprintf("shoplist-%s", normalizeService(service))
}

// Set stores a token in the keyring
func (m *Manager) Set(ctx context.Context, service, account, token string) error {
	return m.keyring.Set(keyringService(service), account, token)
}

// Get retrieves a token, checking the keyring first and then the
// SHOPLIST_<SERVICE>_TOKEN environment variable.
func (m *Manager) Get(ctx context.Context, service, account string) (*TokenInfo, error) {
	service = normalizeService(service)

	token, err := m.keyring.Get(keyringService(service), account)
	if err == nil && token != "" {
		return &TokenInfo{
			Source:  SourceKeyring,
			Service: service,
			Account: account,
			Token:   token,
			Found:   true,
		}, nil
	}

	envKey := fmt.Sprintf("SHOPLIST_%s_TOKEN", strings.ToUpper(service))
	if envToken := os.Getenv(envKey); envToken != "" {
		return &TokenInfo{
			Source:  SourceEnvironment,
			Service: service,
			Account: account,
			Token:   envToken,
			Found:   true,
		}, nil
	}

	return &TokenInfo{
		Source:  SourceNone,
		Service: service,
		Account: account,
		Found:   false,
	}, nil
}

// Delete removes a token from the keyring. Deleting an absent token
// is not an error.
func (m *Manager) Delete(ctx context.Context, service, account string) error {
	err := m.keyring.Delete(keyringService(service), account)
	if err != nil && strings.Contains(err.Error(), "not found") {
		return nil
	}
	return err
}

// PromptToken prompts for a secret. On a terminal the input is hidden;
// otherwise (tests, pipes) a plain line is read.
func PromptToken(reader io.Reader, writer io.Writer, service, account string) (string, error) {
	_, _ = fmt.Fprintf(writer, "Enter token for %s (account: %s): ", service, account)

	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(writer)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	scanner := bufio.NewScanner(reader)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no input received")
}
