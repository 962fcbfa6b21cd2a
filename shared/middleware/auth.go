package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// AuthMiddleware handles JWT token validation and tenant resolution
type AuthMiddleware struct {
	cognitoClient  *cognitoidentityprovider.CognitoIdentityProvider
	userPoolID     string
	jwksValidator  *utils.JWKSValidator
	circuitBreaker *utils.CircuitBreaker
}

// CognitoClaims represents Cognito JWT claims. The tenant id is always the
// Cognito sub; role and parent scope ride on custom attributes stamped at
// registration.
type CognitoClaims struct {
	Sub                  string `json:"sub"`
	Email                string `json:"email"`
	Username             string `json:"cognito:username"`
	TokenUse             string `json:"token_use"`
	CustomRole           string `json:"custom:role"`
	CustomParentTenantID string `json:"custom:parent_tenant_id"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(region, userPoolID string) (*AuthMiddleware, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{
		cognitoClient:  cognitoidentityprovider.New(sess),
		userPoolID:     userPoolID,
		jwksValidator:  utils.NewJWKSValidator(region, userPoolID),
		circuitBreaker: utils.NewCircuitBreaker(5, 30*time.Second),
	}, nil
}

// RequireAuth validates the bearer token and resolves the principal's
// tenant scope into the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := am.parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		role, err := models.ParseTenantRole(claims.CustomRole)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown role on token"})
			c.Abort()
			return
		}

		parent := claims.CustomParentTenantID
		if parent == "" {
			parent = models.RootTenantID
		}

		// Tenant id equals the credential id (sub) by construction.
		c.Set("tenant_id", claims.Sub)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("role", string(role))
		c.Set("parent_tenant_id", parent)

		c.Next()
	}
}

// RequireRole restricts a route to one tenant role.
func (am *AuthMiddleware) RequireRole(required models.TenantRole) gin.HandlerFunc {
	return am.RequireAnyRole(required)
}

// RequireAnyRole restricts a route to a set of tenant roles.
func (am *AuthMiddleware) RequireAnyRole(allowed ...models.TenantRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Tenant role not found in context"})
			c.Abort()
			return
		}

		for _, want := range allowed {
			if roleStr == string(want) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Insufficient permissions",
			"user_role": roleStr,
		})
		c.Abort()
	}
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// parseToken verifies the token signature against the user pool JWKS and
// extracts the claims, with a Redis cache in front so a hot token is only
// verified once per TTL.
func (am *AuthMiddleware) parseToken(tokenString string) (*CognitoClaims, error) {
	cacheKey := "token:claims:" + utils.HashKey(tokenString)
	if cachedData, err := utils.CacheGet(cacheKey); err == nil {
		var claims CognitoClaims
		if err := json.Unmarshal([]byte(cachedData), &claims); err == nil {
			return &claims, nil
		}
	}

	token, err := am.jwksValidator.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	claims := &CognitoClaims{
		Sub:                  getClaimString(mapClaims, "sub"),
		Email:                getClaimString(mapClaims, "email"),
		Username:             getClaimString(mapClaims, "cognito:username"),
		TokenUse:             getClaimString(mapClaims, "token_use"),
		CustomRole:           getClaimString(mapClaims, "custom:role"),
		CustomParentTenantID: getClaimString(mapClaims, "custom:parent_tenant_id"),
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	// Cache failure is non-critical.
	if data, err := json.Marshal(claims); err == nil {
		_ = utils.CacheSet(cacheKey, string(data), 5*time.Minute)
	}

	return claims, nil
}

// getClaimString safely extracts a string claim
func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// GetUserFromContext extracts the authenticated principal's scope from the
// Gin context: its own tenant id, role, and parent tenant id.
func GetUserFromContext(c *gin.Context) (tenantID string, role models.TenantRole, parentTenantID string) {
	tenantID = c.GetString("tenant_id")
	role = models.TenantRole(c.GetString("role"))
	parentTenantID = c.GetString("parent_tenant_id")
	return
}
