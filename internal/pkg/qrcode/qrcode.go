package qrcode

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const restaurantIDClaim = "restaurant_id"

// Service mints and verifies the signed payload embedded in a restaurant's
// attendance QR code. Rendering the code itself is up to the client.
type Service interface {
	Mint(restaurantID string) (string, error)
	Verify(payload string) (restaurantID string, err error)
}

type qrService struct {
	secretKey []byte
	ttl       time.Duration
}

func NewService(secretKey string, ttl time.Duration) Service {
	return &qrService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

func (s *qrService) Mint(restaurantID string) (string, error) {
	now := time.Now().UTC()

	token, err := jwt.NewBuilder().
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim(restaurantIDClaim, restaurantID).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build QR payload: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign QR payload: %w", err)
	}

	return string(signed), nil
}

func (s *qrService) Verify(payload string) (string, error) {
	token, err := jwt.Parse(
		[]byte(payload),
		jwt.WithKey(jwa.HS256, s.secretKey),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("invalid QR payload: %w", err)
	}

	raw, ok := token.Get(restaurantIDClaim)
	if !ok {
		return "", fmt.Errorf("QR payload has no %s claim", restaurantIDClaim)
	}

	restaurantID, ok := raw.(string)
	if !ok || restaurantID == "" {
		return "", fmt.Errorf("QR payload %s claim is not a string", restaurantIDClaim)
	}

	return restaurantID, nil
}
