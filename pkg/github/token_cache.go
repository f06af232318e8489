package github

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

const (
	// KeyringService is the keychain service name for cached GitHub tokens.
	KeyringService = "pr-summarizer-github"
	// KeyringAccount is the keychain account name for OAuth tokens.
	KeyringAccount = "oauth-token"

	// TokenCacheFile is the fallback cache file under the config directory.
	TokenCacheFile = "github-token.json" //nolint:gosec // file name, not a credential
)

// TokenCache stores the OAuth token obtained by 'auth login'.
// Get returns (nil, nil) when nothing is cached.
type TokenCache interface {
	Get() (*oauth2.Token, error)
	Set(token *oauth2.Token) error
	Clear() error
	Location() string
}

type cachedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope,omitempty"`
	Expiry      time.Time `json:"expiry,omitzero"`
}

func encodeToken(t *oauth2.Token) ([]byte, error) {
	scope, _ := t.Extra("scope").(string)
	return json.Marshal(cachedToken{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Scope:       scope,
		Expiry:      t.Expiry,
	})
}

func decodeToken(data []byte) (*oauth2.Token, error) {
	var cached cachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	token := &oauth2.Token{
		AccessToken: cached.AccessToken,
		TokenType:   cached.TokenType,
		Expiry:      cached.Expiry,
	}
	if cached.Scope != "" {
		token = token.WithExtra(map[string]any{"scope": cached.Scope})
	}
	return token, nil
}

// NewTokenCache returns a keychain-backed cache when the OS keyring works,
// otherwise a file under ~/.config/pr-summarizer.
func NewTokenCache() TokenCache {
	probe := KeyringService + "-probe"
	if err := keyring.Set(probe, "probe", "probe"); err == nil {
		_ = keyring.Delete(probe, "probe")
		return &KeychainTokenCache{service: KeyringService, account: KeyringAccount}
	}
	return NewFileTokenCache(defaultTokenCachePath())
}

// KeychainTokenCache uses the macOS keychain, Linux secret service or
// Windows credential manager.
type KeychainTokenCache struct {
	service string
	account string
}

// Get retrieves the cached token from the keychain.
func (k *KeychainTokenCache) Get() (*oauth2.Token, error) {
	data, err := keyring.Get(k.service, k.account)
	if err != nil {
		if prserrors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, prserrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to read from keychain", err)
	}

	token, err := decodeToken([]byte(data))
	if err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to parse cached token", err)
	}
	return token, nil
}

// Set stores the token in the keychain.
func (k *KeychainTokenCache) Set(token *oauth2.Token) error {
	data, err := encodeToken(token)
	if err != nil {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to serialize token", err)
	}
	if err := keyring.Set(k.service, k.account, string(data)); err != nil {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to save to keychain", err)
	}
	return nil
}

// Clear removes the token from the keychain.
func (k *KeychainTokenCache) Clear() error {
	if err := keyring.Delete(k.service, k.account); err != nil && !prserrors.Is(err, keyring.ErrNotFound) {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Clear", "failed to clear keychain", err)
	}
	return nil
}

// Location describes where the token is kept.
func (k *KeychainTokenCache) Location() string {
	return "OS keychain (" + k.service + ")"
}

// FileTokenCache stores the token in a 0600 file for headless systems.
type FileTokenCache struct {
	path string
}

// NewFileTokenCache returns a cache backed by the file at path.
func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

// Get retrieves the cached token from the file.
func (f *FileTokenCache) Get() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, prserrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to read token file", err)
	}

	token, err := decodeToken(data)
	if err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("TokenCache.Get", "failed to parse cached token", err)
	}
	return token, nil
}

// Set writes the token with owner-only permissions.
func (f *FileTokenCache) Set(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to create config directory", err)
	}

	data, err := encodeToken(token)
	if err != nil {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to serialize token", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Set", "failed to write token file", err)
	}
	return nil
}

// Clear removes the token file. Clearing an absent file is not an error.
func (f *FileTokenCache) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return prserrors.NewGitHubErrorWithCause("TokenCache.Clear", "failed to remove token file", err)
	}
	return nil
}

// Location describes where the token is kept.
func (f *FileTokenCache) Location() string {
	return f.path
}

func defaultTokenCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "pr-summarizer", TokenCacheFile)
}
