package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrUnauthorized is the parent of every authentication failure.
	ErrUnauthorized = errors.New("unauthorized")

	ErrTokenMalformed     = fmt.Errorf("%w: malformed token", ErrUnauthorized)
	ErrTokenBadSignature  = fmt.Errorf("%w: bad token signature", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)

func init() {
	// exp, iat and nbf are written with microsecond decimals
	jwt.TimePrecision = time.Microsecond
}

// JWTService issues and verifies HS256 access tokens. It holds no per-token
// state; a token is valid from its issue instant up to, not including, its
// expiry instant. Both are kept to the microsecond.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewJWTService(secret string, ttl time.Duration, issuer string) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	ttl = ttl.Truncate(jwt.TimePrecision)
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be at least %s", jwt.TimePrecision)
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateJWT mints a token for userID issued at now and returns it with its
// expiry, now+TTL.
func (s *JWTService) GenerateJWT(userID int64, now time.Time) (string, time.Time, error) {
	issuedAt := now.Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseJWT verifies tokenString as of now and returns its subject.
func (s *JWTService) ParseJWT(tokenString string, now time.Time) (int64, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		// the library reads exp through a float64 and can land one unit early;
		// checkWindow below enforces the exact bounds
		jwt.WithLeeway(jwt.TimePrecision),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
	)
	if err != nil {
		return 0, classifyJWTError(err)
	}
	if !token.Valid {
		return 0, ErrTokenMalformed
	}
	if err := checkWindow(parser, tokenString, now); err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}

type tokenWindow struct {
	ExpiresAt json.Number `json:"exp"`
	NotBefore json.Number `json:"nbf"`
}

// checkWindow re-reads exp and nbf from the payload as decimal strings.
func checkWindow(parser *jwt.Parser, tokenString string, now time.Time) error {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return ErrTokenMalformed
	}
	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	var w tokenWindow
	if err := json.Unmarshal(payload, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	exp, err := parseNumericDate(w.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: exp: %v", ErrTokenMalformed, err)
	}
	if !now.Before(exp) {
		return ErrTokenExpired
	}
	if w.NotBefore != "" {
		nbf, err := parseNumericDate(w.NotBefore)
		if err != nil {
			return fmt.Errorf("%w: nbf: %v", ErrTokenMalformed, err)
		}
		if now.Before(nbf) {
			return fmt.Errorf("%w: token not valid yet", ErrTokenMalformed)
		}
	}
	return nil
}

// parseNumericDate reads "seconds[.fraction]" without going through float64.
func parseNumericDate(n json.Number) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(n.String(), ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	var nsec int64
	if fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		fracPart += strings.Repeat("0", 9-len(fracPart))
		if nsec, err = strconv.ParseInt(fracPart, 10, 64); err != nil || nsec < 0 {
			return time.Time{}, fmt.Errorf("bad fraction %q", n)
		}
	}
	return time.Unix(sec, nsec), nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
