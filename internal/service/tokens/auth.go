package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "gamestore"

var ErrInvalidClaims = errors.New("invalid claims")

type UserClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// GenerateUserJWT выпускает токен юзера userID со сроком жизни expire.
func GenerateUserJWT(userID int64, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating user jwt token: %s", err.Error())
	}
	return token, nil
}

// ParseUserID проверяет токен и возвращает id юзера. Истекший токен - ErrTokenExpired.
func ParseUserID(tokenString string, key []byte) (int64, error) {
	claims := new(UserClaims)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("validating user jwt token: %w", err)
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidClaims
	}
	return claims.UserID, nil
}
