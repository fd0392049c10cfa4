package jwtx

import (
	"testing"
	"time"

	"kitabu/model"
	jwtutil "kitabu/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func parsed(t *testing.T, raw string) *jwt.Token {
	t.Helper()
	c := &jwtutil.Claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (interface{}, error) { return []byte("s"), nil })
	require.NoError(t, err)
	return tok
}

func TestFromToken(t *testing.T) {
	raw, err := jwtutil.Issue("s", 12, "admin", time.Hour)
	require.NoError(t, err)

	caller, err := FromToken(parsed(t, raw))
	require.NoError(t, err)
	require.Equal(t, model.Caller{UserID: 12, Role: model.RoleAdmin}, caller)
}

func TestFromToken_RejectsResetAndGarbage(t *testing.T) {
	raw, err := jwtutil.IssueReset("s", 12, time.Minute)
	require.NoError(t, err)
	_, err = FromToken(parsed(t, raw))
	require.Error(t, err)

	_, err = FromToken("not a token")
	require.Error(t, err)

	raw, err = jwtutil.Issue("s", 12, "overlord", time.Hour)
	require.NoError(t, err)
	_, err = FromToken(parsed(t, raw))
	require.Error(t, err)
}
