package credentials

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrKeyringNotAvailable is returned when no system keyring backend
// can be reached (e.g. headless Linux without a secret service).
var ErrKeyringNotAvailable = errors.New("system keyring not available")

// systemKeyring uses the OS keyring via zalando/go-keyring
type systemKeyring struct{}

var _ Keyring = (*systemKeyring)(nil)

func (s *systemKeyring) Set(service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyringNotAvailable, err)
	}
	return nil
}

func (s *systemKeyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("token not found for %s/%s", service, account)
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringNotAvailable, err)
	}
	return secret, nil
}

func (s *systemKeyring) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("token not found for %s/%s", service, account)
		}
		return fmt.Errorf("%w: %v", ErrKeyringNotAvailable, err)
	}
	return nil
}

// MockKeyring is an in-memory keyring for tests
type MockKeyring struct {
	mu      sync.Mutex
	secrets map[string]string
}

var _ Keyring = (*MockKeyring)(nil)

// NewMockKeyring creates a mock keyring
func NewMockKeyring() *MockKeyring {
	return &MockKeyring{
		secrets: make(map[string]string),
	}
}

func mockKey(service, account string) string {
	return service + "|" + account
}

func (m *MockKeyring) Set(service, account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[mockKey(service, account)] = secret
	return nil
}

func (m *MockKeyring) Get(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.secrets[mockKey(service, account)]
	if !ok {
		return "", fmt.Errorf("token not found for %s/%s", service, account)
	}
	return secret, nil
}

func (m *MockKeyring) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey(service, account)
	if _, ok := m.secrets[key]; !ok {
		return fmt.Errorf("token not found for %s/%s", service, account)
	}
	delete(m.secrets, key)
	return nil
}
