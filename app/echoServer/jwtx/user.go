package jwtx

import (
	"errors"

	"kitabu/model"
	jwtutil "kitabu/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// FromToken turns the token echo-jwt stored under "user" into a Caller.
// Reset tokens are rejected so they cannot be used as session tokens.
func FromToken(v any) (model.Caller, error) {
	tok, ok := v.(*jwt.Token)
	if !ok || tok == nil {
		return model.Caller{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(*jwtutil.Claims)
	if !ok {
		return model.Caller{}, errors.New("invalid jwt claims")
	}
	if claims.Reset {
		return model.Caller{}, errors.New("reset token used for authentication")
	}
	id, err := claims.UserID()
	if err != nil {
		return model.Caller{}, err
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Caller{}, err
	}
	return model.Caller{UserID: id, Role: role}, nil
}

func SetCaller(c echo.Context, caller model.Caller) { c.Set(callerKey, caller) }

// CallerFromContext returns the authenticated caller; ok is false on public routes.
func CallerFromContext(c echo.Context) (model.Caller, bool) {
	caller, ok := c.Get(callerKey).(model.Caller)
	return caller, ok
}
