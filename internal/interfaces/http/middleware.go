package httpinterface

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

const callerKey = "caller"

// authMiddleware validates the bearer token of the request and resolves the
// caller identity from its subject claim. There is no platform-enforced
// caller authentication in this environment, so every operation taking the
// caller "from the invocation context" takes it from here.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := callerFromRequest(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized, gin.H{"error": err.Error()},
			)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

func callerFromRequest(c *gin.Context, secret []byte) (string, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("missing bearer token")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid bearer token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid bearer token")
	}
	caller, _ := claims["sub"].(string)
	if len(caller) <= 0 {
		return "", fmt.Errorf("bearer token misses the subject claim")
	}

	return caller, nil
}

func callerFromContext(c *gin.Context) string {
	return c.GetString(callerKey)
}

// errStatusCode maps the domain error taxonomy to HTTP status codes.
func errStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrListingAlreadyExists),
		errors.Is(err, domain.ErrRegistryInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidFeePercentage),
		errors.Is(err, domain.ErrNotAssetOwner),
		errors.Is(err, domain.ErrNotSeller),
		errors.Is(err, domain.ErrSelfPurchase),
		errors.Is(err, domain.ErrPaymentMismatch),
		errors.Is(err, domain.ErrInvalidAsset),
		errors.Is(err, domain.ErrInvalidSeller):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCustodyTransferFailed),
		errors.Is(err, domain.ErrPaymentTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
