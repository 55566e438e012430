package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Link token purposes.
const (
	PurposeMagicLink     = "magic_link"
	PurposePasswordReset = "password_reset"
)

const (
	sessionTTL = 7 * 24 * time.Hour
	linkTTL    = time.Hour
)

type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

// Sign issues a session token for userID.
func (j *JWT) Sign(userID uint64) (string, error) {
	return j.sign(userID, nil, sessionTTL)
}

// Link is a verified emailed link. Version must still match the user's
// LinkVersion when the link is redeemed.
type Link struct {
	UserID  uint64
	Version int
}

// SignLink issues a short-lived single-purpose token for emailed links.
// version is the user's current LinkVersion.
func (j *JWT) SignLink(userID uint64, purpose string, version int) (string, error) {
	if purpose == "" {
		return "", errors.New("link purpose required")
	}
	return j.sign(userID, jwt.MapClaims{"purpose": purpose, "lv": version}, linkTTL)
}

// Verify accepts session tokens only.
func (j *JWT) Verify(tokenStr string) (uint64, error) {
	claims, err := j.verify(tokenStr, "")
	if err != nil {
		return 0, err
	}
	return subject(claims)
}

// VerifyLink accepts only tokens minted by SignLink for purpose.
func (j *JWT) VerifyLink(tokenStr, purpose string) (Link, error) {
	if purpose == "" {
		return Link{}, ErrInvalidToken
	}
	claims, err := j.verify(tokenStr, purpose)
	if err != nil {
		return Link{}, err
	}
	uid, err := subject(claims)
	if err != nil {
		return Link{}, err
	}
	lv, ok := claims["lv"].(float64)
	if !ok {
		return Link{}, ErrInvalidToken
	}
	return Link{UserID: uid, Version: int(lv)}, nil
}

func (j *JWT) sign(userID uint64, extra jwt.MapClaims, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) verify(tokenStr, purpose string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	got, _ := claims["purpose"].(string)
	if got != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func subject(claims jwt.MapClaims) (uint64, error) {
	// jwt MapClaims numbers are float64
	idf, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uint64(idf), nil
}
