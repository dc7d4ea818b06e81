package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var (
	ErrInvalidToken = errors.New("invalid join token")
)

// DefaultTTL is the validity of join tokens issued without an explicit duration.
const DefaultTTL = 72 * time.Hour

type Token struct {
	Participant string `json:"participant"`
	jwt.StandardClaims
}

// EncodeJoinToken signs a token allowing participant to join sessions sharing signKey.
func EncodeJoinToken(signKey string, participant string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	t := Token{
		Participant: participant,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    "boardsync",
			Subject:   participant,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, t)
	return token.SignedString([]byte(signKey))
}

func DecodeJoinToken(signKey string, signedToken string) (Token, error) {
	token, err := jwt.ParseWithClaims(signedToken, &Token{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Wrapf(ErrInvalidToken, "unexpected signing method %v", token.Header["alg"])
		}
		return []byte(signKey), nil
	})
	if err != nil {
		return Token{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims, ok := token.Claims.(*Token); ok && token.Valid {
		return *claims, nil
	}
	return Token{}, ErrInvalidToken
}
