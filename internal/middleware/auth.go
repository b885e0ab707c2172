package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/copilot-learning/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	learnerIDKey contextKey = "learner_id"
	roleKey      contextKey = "role"
)

const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"

	// PurposeAccountDeletion marks the short-lived token that confirms an account deletion.
	PurposeAccountDeletion = "account_deletion"
	// PurposeCertificateExport marks the signature carried by a certificate backup.
	PurposeCertificateExport = "certificate_export"
)

// JWTSecret is the HMAC signing key for all tokens. It is set from config at startup.
var JWTSecret = []byte("copilot-learning-dev-signing-key")

// GenerateToken signs a token for subject with the given role and lifetime.
func GenerateToken(subject, role string, ttl time.Duration) (string, time.Time, error) {
	return sign(jwt.MapClaims{"sub": subject, "role": role}, ttl)
}

// GeneratePurposeToken signs a token that is only accepted by ParsePurposeToken
// for the same purpose.
func GeneratePurposeToken(subject, purpose string, ttl time.Duration) (string, time.Time, error) {
	return sign(jwt.MapClaims{"sub": subject, "purpose": purpose}, ttl)
}

func sign(claims jwt.MapClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims["iat"] = now.Unix()
	claims["exp"] = exp.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ParsePurposeToken validates a purpose token and returns its subject.
func ParsePurposeToken(tokenString, purpose string) (string, error) {
	claims, err := parsePurpose(tokenString, purpose)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

// SignDigest binds a payload digest to subject. The result is a purpose token
// carrying the digest in its "sum" claim.
func SignDigest(subject, purpose, digest string, ttl time.Duration) (string, error) {
	token, _, err := sign(jwt.MapClaims{"sub": subject, "purpose": purpose, "sum": digest}, ttl)
	return token, err
}

// VerifyDigest checks a token from SignDigest and returns its subject and digest.
func VerifyDigest(tokenString, purpose string) (string, string, error) {
	claims, err := parsePurpose(tokenString, purpose)
	if err != nil {
		return "", "", err
	}
	sub, _ := claims["sub"].(string)
	sum, _ := claims["sum"].(string)
	if sum == "" {
		return "", "", errors.New("token has no digest")
	}
	return sub, sum, nil
}

func parsePurpose(tokenString, purpose string) (jwt.MapClaims, error) {
	claims, err := parse(tokenString)
	if err != nil {
		return nil, err
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return nil, errors.New("token issued for a different purpose")
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// AuthMiddleware accepts a bearer token carrying a subject and role and puts
// both into the request context. Purpose tokens are rejected.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := parse(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if sub == "" || role == "" {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := WithLearnerID(r.Context(), sub)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(roleKey).(string); role != RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LearnerMiddleware must run after AuthMiddleware. Learner routes act on the
// token subject's own data, so other roles are refused.
func LearnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(roleKey).(string); role != RoleLearner {
			writeError(w, http.StatusForbidden, "Learner access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LearnerID returns the authenticated subject placed by AuthMiddleware.
func LearnerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(learnerIDKey).(string)
	return id, ok && id != ""
}

// WithLearnerID is used by AuthMiddleware and by handler tests.
func WithLearnerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, learnerIDKey, id)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
