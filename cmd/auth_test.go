package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
)

func useFileTokenCache(t *testing.T) *github.FileTokenCache {
	t.Helper()
	cache := github.NewFileTokenCache(filepath.Join(t.TempDir(), "token.json"))
	old := newTokenCache
	newTokenCache = func() github.TokenCache { return cache }
	t.Cleanup(func() { newTokenCache = old })
	return cache
}

func TestAuthLogin_RequiresTerminal(t *testing.T) {
	old := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	defer func() { stdinIsTerminal = old }()

	cmd := newAuthLoginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Errorf("auth login error = %v, want terminal error", err)
	}
}

func TestAuthStatusAndLogout(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())

	cache := useFileTokenCache(t)

	run := func(cmdName string) string {
		t.Helper()
		var out bytes.Buffer
		c := newAuthStatusCmd()
		if cmdName == "logout" {
			c = newAuthLogoutCmd()
		}
		c.SetOut(&out)
		c.SetArgs([]string{})
		if err := c.Execute(); err != nil {
			t.Fatalf("auth %s error = %v", cmdName, err)
		}
		return out.String()
	}

	if got := run("status"); !strings.Contains(got, "Not logged in") {
		t.Errorf("status without token = %q", got)
	}

	if err := cache.Set(&oauth2.Token{AccessToken: "gho_cachedtoken1234", TokenType: "bearer"}); err != nil {
		t.Fatalf("cache.Set() error = %v", err)
	}
	got := run("status")
	if !strings.Contains(got, "from cache") || strings.Contains(got, "gho_cachedtoken1234") {
		t.Errorf("status with cached token = %q", got)
	}

	if got := run("logout"); !strings.Contains(got, cache.Location()) {
		t.Errorf("logout output = %q", got)
	}
	if tok, _ := cache.Get(); tok != nil {
		t.Error("logout should clear the cached token")
	}
}

func TestAuthStatus_EnvToken(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())
	useFileTokenCache(t)
	t.Setenv("GITHUB_TOKEN", "ghp_environmenttoken")

	var out bytes.Buffer
	cmd := newAuthStatusCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("auth status error = %v", err)
	}
	if !strings.Contains(out.String(), "from GITHUB_TOKEN") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAuthToken(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())
	t.Setenv("PRSUM_SERVER_JWT_SECRET", "test-signing-secret")

	var out bytes.Buffer
	cmd := newAuthTokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "ci", "--ttl", "5m"})
	defer func() {
		tokenSubject = "pr-summarizer-cli"
		tokenTTL = time.Hour
	}()
	if err := cmd.Execute(); err != nil {
		t.Fatalf("auth token error = %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (any, error) {
		return []byte("test-signing-secret"), nil
	})
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "ci" {
		t.Errorf("subject = %q, want ci", claims.Subject)
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 5*time.Minute || ttl < 4*time.Minute {
		t.Errorf("token expires in %v, want about 5m", ttl)
	}
}

func TestAuthToken_RequiresSecret(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())

	cmd := newAuthTokenCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("auth token should fail without server.jwt_secret")
	}
}
