package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

const (
	issuer       = "grant-claims"
	MinSecretLen = 32
	// clockSkew tolerates wallets whose clock runs slightly ahead.
	clockSkew = time.Minute
)

type Config struct {
	Secret        []byte
	TTL           time.Duration
	MaxMessageAge time.Duration
	Now           func() time.Time
}

// Session is an issued bearer token.
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Manager verifies sign-in messages and issues HS256 session tokens.
type Manager struct {
	secret        []byte
	ttl           time.Duration
	maxMessageAge time.Duration
	now           func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, fmt.Errorf("session: secret must be at least %d bytes", MinSecretLen)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		secret:        cfg.Secret,
		ttl:           cfg.TTL,
		maxMessageAge: cfg.MaxMessageAge,
		now:           cfg.Now,
	}, nil
}

// SignIn checks that signature is address's personal_sign over message and
// that message is recent and names address, then issues a token.
func (m *Manager) SignIn(address, message, signature string) (Session, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return Session{}, apperr.New(apperr.CodeValidation, "address is invalid")
	}
	if strings.TrimSpace(message) == "" || strings.TrimSpace(signature) == "" {
		return Session{}, apperr.New(apperr.CodeValidation, "message and signature are required")
	}
	want := common.HexToAddress(address)
	if !strings.Contains(strings.ToLower(message), strings.ToLower(want.Hex())) {
		return Session{}, apperr.New(apperr.CodeUnauthorized, "message does not name the signing address")
	}

	at, err := issuedAt(message)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.CodeValidation, "message has no valid issue time", err)
	}
	now := m.now()
	if at.After(now.Add(clockSkew)) {
		return Session{}, apperr.New(apperr.CodeUnauthorized, "message is issued in the future")
	}
	if m.maxMessageAge > 0 && now.Sub(at) > m.maxMessageAge {
		return Session{}, apperr.New(apperr.CodeUnauthorized, "message has expired")
	}

	got, err := Recover(message, signature)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.CodeUnauthorized, "signature is invalid", err)
	}
	if got != want {
		return Session{}, apperr.New(apperr.CodeUnauthorized, "signature does not match address")
	}
	return m.issue(want, now)
}

func (m *Manager) issue(addr common.Address, now time.Time) (Session, error) {
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   addr.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("session: sign token: %w", err)
	}
	return Session{Token: token, Address: addr.Hex(), ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

// Verify returns the checksummed address a token was issued to.
func (m *Manager) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.New(apperr.CodeUnauthorized, "session token is required")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}
	if !common.IsHexAddress(claims.Subject) {
		return "", apperr.New(apperr.CodeUnauthorized, "session subject is invalid")
	}
	return common.HexToAddress(claims.Subject).Hex(), nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.Wrap(apperr.CodeUnauthorized, "session has expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperr.Wrap(apperr.CodeUnauthorized, "session signature is invalid", err)
	default:
		return apperr.Wrap(apperr.CodeUnauthorized, "session is invalid", err)
	}
}
