package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
)

const uploadAudience = "direct-upload"

// UploadTokenSigner signs the short-lived tokens that stand in for a presigned
// URL when assets live on the local filesystem.
type UploadTokenSigner struct {
	secretKey []byte
}

type UploadClaims struct {
	ContentType string `json:"ct"`
	jwt.RegisteredClaims
}

func NewUploadTokenSigner(secretKey string) *UploadTokenSigner {
	return &UploadTokenSigner{secretKey: []byte(secretKey)}
}

func (s *UploadTokenSigner) Sign(key, contentType string, expiresAt time.Time) (string, error) {
	claims := UploadClaims{
		ContentType: contentType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			Audience:  jwt.ClaimStrings{uploadAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			Issuer:    issuer,
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing upload token: %w", err)
	}
	return tokenStr, nil
}

// Verify checks that the token was issued for exactly this key and content type.
func (s *UploadTokenSigner) Verify(tokenStr, key, contentType string) error {
	var claims UploadClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithAudience(uploadAudience), jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return domain.ErrTokenInvalid
	}

	if claims.Subject != key || claims.ContentType != contentType {
		return domain.ErrTokenInvalid
	}
	return nil
}
