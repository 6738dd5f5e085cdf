package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ServiceName is the keychain service under which registry tokens are stored.
const ServiceName = "nugetsync"

var (
	// ErrInvalidSchema indicates the stored value could not be parsed.
	ErrInvalidSchema = errors.New("credential data does not match expected schema")

	// ErrEmptyCredential indicates the entry exists but holds no token.
	ErrEmptyCredential = errors.New("credential is empty")
)

// RegistryCredential is the JSON document stored per registry host.
type RegistryCredential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenUser returns the keychain user for a registry URL: its lowercased
// host (with port when present). Tokens are shared by every feed on a host.
func TokenUser(registryURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(registryURL))
	if err != nil {
		return "", fmt.Errorf("parsing registry URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("registry URL %q has no host", registryURL)
	}
	return strings.ToLower(u.Host), nil
}

// GetToken returns the stored token for registryURL's host.
//
// Errors:
//   - ErrNotFound when nothing is stored
//   - ErrEmptyCredential when the entry is blank
//   - ErrInvalidSchema when the entry is not a RegistryCredential
//   - *TimeoutError when the keychain does not answer
func GetToken(registryURL string) (string, error) {
	user, err := TokenUser(registryURL)
	if err != nil {
		return "", err
	}

	raw, err := Get(ServiceName, user)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyCredential, user)
	}

	var cred RegistryCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidSchema, user, err)
	}
	if cred.Token == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyCredential, user)
	}
	return cred.Token, nil
}

// SetToken stores token for registryURL's host, replacing any previous one.
func SetToken(registryURL, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyCredential
	}
	user, err := TokenUser(registryURL)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(RegistryCredential{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return Set(ServiceName, user, string(raw))
}

// DeleteToken removes the token for registryURL's host.
func DeleteToken(registryURL string) error {
	user, err := TokenUser(registryURL)
	if err != nil {
		return err
	}
	return Delete(ServiceName, user)
}

// LookupToken is GetToken that treats "nothing usable stored" as an empty
// token. Keychain failures other than a missing entry are still returned.
func LookupToken(registryURL string) (string, error) {
	token, err := GetToken(registryURL)
	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyCredential):
		return "", nil
	default:
		return "", err
	}
}
