package jwt

import (
	"errors"
	"os"
	"strconv"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

func secret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	// dev fallback; replace in prod
	return []byte("replace-this-with-a-strong-secret")
}

// Parse validates an HS256 JWT and returns the user id from the "sub" claim.
func Parse(tok string) (int64, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) {
		return secret(), nil
	}, jw.WithValidMethods([]string{"HS256"}))
	if err != nil || !t.Valid {
		return 0, errors.New("invalid token")
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return 0, errors.New("bad claims")
	}
	if exp, ok := mc["exp"].(float64); ok && time.Now().Unix() > int64(exp) {
		return 0, errors.New("token expired")
	}
	switch sub := mc["sub"].(type) {
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || id == 0 {
			return 0, errors.New("no subject")
		}
		return id, nil
	case float64:
		if sub == 0 {
			return 0, errors.New("no subject")
		}
		return int64(sub), nil
	}
	return 0, errors.New("no subject")
}
