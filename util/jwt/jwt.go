package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of every token this service issues. Reset tokens
// carry Reset=true and are refused by the API auth middleware.
type Claims struct {
	Role  string `json:"role"`
	Reset bool   `json:"reset,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("sub missing in claims")
	}
	return id, nil
}

func Issue(secret string, userID int64, role string, ttl time.Duration) (string, error) {
	return sign(secret, &Claims{Role: role}, userID, ttl)
}

func IssueReset(secret string, userID int64, ttl time.Duration) (string, error) {
	return sign(secret, &Claims{Reset: true}, userID, ttl)
}

func sign(secret string, c *Claims, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	c.Subject = strconv.FormatInt(userID, 10)
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// Parse accepts a raw token or an Authorization header value ("Bearer ...").
func Parse(authHeader string, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	c := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}
