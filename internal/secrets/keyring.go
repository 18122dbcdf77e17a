package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "pf-fairness-engine"
	DefaultProfile = "default"

	partSigningKey = "signing-key"
	partHMACKey    = "hmac-key"
)

// ErrNotFound is returned when no secret is stored for a profile.
var ErrNotFound = keyring.ErrNotFound

// KeyringStore keeps signing keys in the OS keychain with an optional file fallback.
// Fallback is intended for containers and CI where no system keyring is available.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring wrapper.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = DefaultService
	}
	return &KeyringStore{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

func (k *KeyringStore) key(profile, part string) string {
	return fmt.Sprintf("%s/%s", profile, part)
}

func (k *KeyringStore) SetSigningKey(profile, value string) error {
	return k.setSecret(profile, partSigningKey, value)
}

func (k *KeyringStore) SigningKey(profile string) (string, error) {
	return k.getSecret(profile, partSigningKey)
}

func (k *KeyringStore) SetHMACKey(profile, value string) error {
	return k.setSecret(profile, partHMACKey, value)
}

func (k *KeyringStore) HMACKey(profile string) (string, error) {
	return k.getSecret(profile, partHMACKey)
}

// Delete removes every secret stored for profile.
func (k *KeyringStore) Delete(profile string) error {
	profile = normalizeProfile(profile)

	var errs []error
	for _, part := range []string{partSigningKey, partHMACKey} {
		if err := keyring.Delete(k.service, k.key(profile, part)); err != nil &&
			!errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
			errs = append(errs, err)
		}
	}

	ferr := k.deleteFallbackProfile(profile)
	if len(errs) > 0 {
		return fmt.Errorf("secrets: keyring delete failed: %w", errs[0])
	}
	return ferr
}

func normalizeProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

func (k *KeyringStore) setSecret(profile, part, value string) error {
	if value == "" {
		return fmt.Errorf("secrets: %s must not be empty", part)
	}
	profile = normalizeProfile(profile)

	if err := keyring.Set(k.service, k.key(profile, part), value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring set %s: %w", part, err)
	}

	return k.setFallback(profile, part, value)
}

func (k *KeyringStore) getSecret(profile, part string) (string, error) {
	profile = normalizeProfile(profile)

	val, err := keyring.Get(k.service, k.key(profile, part))
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secrets: keyring get %s: %w", part, err)
	}

	fallback, ferr := k.getFallback(profile, part)
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(ferr, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackSecrets map[string]map[string]string

func (k *KeyringStore) setFallback(profile, part, value string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return fmt.Errorf("secrets: keyring unavailable and no fallback path configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[profile]; !ok {
		data[profile] = map[string]string{}
	}
	data[profile][part] = value
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) getFallback(profile, part string) (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", fmt.Errorf("secrets: fallback path not configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[profile][part]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (k *KeyringStore) deleteFallbackProfile(profile string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[profile]; !ok {
		return nil
	}
	delete(data, profile)
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("secrets: read fallback secrets: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("secrets: decode fallback secrets: %w", err)
	}
	return out, nil
}

func (k *KeyringStore) writeFallbackUnlocked(data fallbackSecrets) error {
	if err := os.MkdirAll(filepath.Dir(k.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("secrets: encode fallback secrets: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("secrets: write fallback secrets: %w", err)
	}
	return nil
}
