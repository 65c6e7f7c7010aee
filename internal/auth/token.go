package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Registered claim names the codec manages itself. Issue rejects them
// in caller claim maps and Verify strips them from the result, so a
// round trip hands back exactly what the caller passed in.
var reservedClaims = map[string]struct{}{
	"iss": {},
	"iat": {},
	"exp": {},
	"jti": {},
}

// Codec signs and verifies time-limited claim tokens for one signing
// domain. Domains must never share a secret: a token minted for one
// purpose has to fail verification in every other domain.
type Codec struct {
	domain string
	secret []byte
	now    func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithClock overrides the codec time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a codec for the given signing domain.
func NewCodec(domain, secret string, opts ...CodecOption) (*Codec, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, errors.New("auth: signing domain is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &Codec{domain: domain, secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Domain returns the codec's signing domain name.
func (c *Codec) Domain() string { return c.domain }

// Issue signs the claim map as an HS256 token expiring after ttl. The
// issuer claim carries the signing domain; two tokens for identical
// claims still differ through iat and jti.
func (c *Codec) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be greater than zero")
	}
	mc := jwt.MapClaims{}
	for k, v := range claims {
		if _, reserved := reservedClaims[k]; reserved {
			return "", fmt.Errorf("auth: claim %q is reserved", k)
		}
		mc[k] = v
	}
	now := c.now().UTC()
	mc["iss"] = c.domain
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(ttl))
	mc["jti"] = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, signing domain and expiry, and returns the
// claims passed at issuance. Expired tokens fail with ErrTokenExpired;
// every other failure is ErrTokenMalformed.
func (c *Codec) Verify(token string) (map[string]any, error) {
	mc, err := c.parse(token)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(mc))
	for k, v := range mc {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Expiry returns the expiration time of a token that verifies in this
// codec's domain.
func (c *Codec) Expiry(token string) (time.Time, error) {
	mc, err := c.parse(token)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrTokenMalformed
	}
	return exp.Time, nil
}

func (c *Codec) parse(token string) (jwt.MapClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenMalformed
			}
			return c.secret, nil
		},
		jwt.WithIssuer(c.domain),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return mc, nil
}

// Int64Claim reads an integer claim from a verified claim map. JSON
// decoding turns numbers into float64, so both forms are accepted.
func Int64Claim(claims map[string]any, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// HashToken returns the deterministic SHA-256 hex digest of a raw
// token. Deliberately unsalted: blacklist entries are looked up by
// digest, not verified against it.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
