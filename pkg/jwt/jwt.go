package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const algHS256 = "HS256"

var encoding = base64.RawURLEncoding

// Service signs and verifies tokens with a single HMAC key.
type Service struct {
	key []byte
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for exp/nbf checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service with the given signing key.
func New(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is New for string keys.
func NewFromString(key string, opts ...Option) (*Service, error) {
	return New([]byte(key), opts...)
}

// Generate signs claims and returns the compact token.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	h, err := json.Marshal(header{Alg: algHS256, Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	signingInput := encoding.EncodeToString(h) + "." + encoding.EncodeToString(payload)
	return signingInput + "." + encoding.EncodeToString(s.sign(signingInput)), nil
}

// Parse verifies token and decodes its payload into claims.
func (s *Service) Parse(token string, claims any) error {
	if claims == nil {
		return ErrMissingClaims
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	rawHeader, err := encoding.DecodeString(parts[0])
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if h.Alg != algHS256 {
		return ErrUnexpectedSigningMethod
	}

	sig, err := encoding.DecodeString(parts[2])
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if !hmac.Equal(sig, s.sign(parts[0]+"."+parts[1])) {
		return ErrInvalidSignature
	}

	payload, err := encoding.DecodeString(parts[1])
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}

	var std StandardClaims
	if err := json.Unmarshal(payload, &std); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	now := s.now().Unix()
	if std.ExpiresAt != 0 && now >= std.ExpiresAt {
		return ErrExpiredToken
	}
	if std.NotBefore != 0 && now < std.NotBefore {
		return ErrInvalidToken
	}

	if err := json.Unmarshal(payload, claims); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	return nil
}

func (s *Service) sign(input string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(input))
	return mac.Sum(nil)
}
