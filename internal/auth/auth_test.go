package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateKey_PersistsKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(dir, keyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_RejectsMalformedKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFile), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func newService(t *testing.T, clock clockwork.Clock) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	svc, err := NewTokenService(key, time.Hour, clock)
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueVerify(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newService(t, clock)

	token, expires, err := svc.Issue("desktop-shell")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), expires)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "desktop-shell", claims.Subject)
	assert.Equal(t, "desktop-shell", claims.Client)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newService(t, clock)

	token, _, err := svc.Issue("desktop-shell")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	issuer := newService(t, nil)
	verifier := newService(t, nil)

	token, _, err := issuer.Issue("desktop-shell")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour, nil)
	assert.Error(t, err)
}

func TestWriteToken_RoundTripsThroughVerify(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, clockwork.NewFakeClock())
	token, _, err := svc.Issue("shell")
	require.NoError(t, err)

	path, err := WriteToken(dir, token)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	claims, err := svc.Verify(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "shell", claims.Client)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
