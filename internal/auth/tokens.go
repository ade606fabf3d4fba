package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/jonboulle/clockwork"

	"github.com/vitrinaapp/vitrina-store/internal/id"
)

const (
	tokenIssuer   = "vitrinad"
	tokenAudience = "vitrina-shell"

	DefaultTokenDuration = 24 * time.Hour
)

// TokenService mints and checks bridge tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	clock    clockwork.Clock
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, duration time.Duration, clock clockwork.Clock) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}
	if duration <= 0 {
		duration = DefaultTokenDuration
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{key: symmetric, duration: duration, clock: clock}, nil
}

// Issue mints a token for the named UI client.
func (s *TokenService) Issue(client string) (token string, expires time.Time, err error) {
	now := s.clock.Now()
	expires = now.Add(s.duration)

	t := paseto.NewToken()
	t.SetIssuer(tokenIssuer)
	t.SetSubject(client)
	t.SetAudience(tokenAudience)
	t.SetIssuedAt(now)
	t.SetNotBefore(now)
	t.SetExpiration(expires)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	t.SetJti(tokenID)

	//nolint:errcheck // Set only fails on unmarshalable values
	_ = t.Set("client", client)

	return t.V4Encrypt(s.key, nil), expires, nil
}

// Verify decrypts token and checks issuer, audience and validity window.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.clock.Now()))

	parsed, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(parsed.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	return &claims, nil
}

// Duration returns the token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
