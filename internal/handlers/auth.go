package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

var jwtSecret []byte

// InitAuth sets the HMAC secret used to sign and verify bearer tokens. Call
// once from main after configuration is loaded.
func InitAuth(secret string) {
	jwtSecret = []byte(secret)
}

type authClaims struct {
	UserID string
	Role   string
}

// authenticate parses and verifies the request's bearer token.
func authenticate(r *http.Request) (*authClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("authorization header required")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, errors.New("invalid user_id in token")
	}
	return &authClaims{UserID: userID, Role: role}, nil
}

// issueToken signs a bearer token for a logged-in user.
func issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// requireRole authenticates the request and checks the caller's role.
// On failure it writes the response and returns nil.
func requireRole(w http.ResponseWriter, r *http.Request, role string) *authClaims {
	claims, err := authenticate(r)
	if err != nil {
		http.Error(w, `{"error":"UNAUTHORIZED","message":"`+err.Error()+`"}`, http.StatusUnauthorized)
		return nil
	}
	if role != "" && claims.Role != role {
		http.Error(w, `{"error":"FORBIDDEN","message":"insufficient role"}`, http.StatusForbidden)
		return nil
	}
	return claims
}
