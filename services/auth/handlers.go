package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

var (
	cognitoClient  *cognitoidentityprovider.CognitoIdentityProvider
	circuitBreaker *utils.CircuitBreaker
)

func init() {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		panic("Failed to create AWS session: " + err.Error())
	}
	cognitoClient = cognitoidentityprovider.New(sess)

	// Circuit breaker for Cognito calls (max 5 failures, 30 second reset)
	circuitBreaker = utils.NewCircuitBreaker(5, 30*time.Second)
}

// generateSecretHash creates a secret hash for Cognito authentication
func generateSecretHash(username string) string {
	clientSecret := os.Getenv("COGNITO_CLIENT_SECRET")
	clientID := os.Getenv("COGNITO_CLIENT_ID")

	if clientSecret == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// RegisterRequest represents the registration request. Ref carries the
// referring agency id from the recruitment link; it is consumed exactly
// once, here.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	Ref      string `json:"ref,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// resolveReferralScope resolves the parent scope for a merchant or
// supplier registration. A missing or unknown referral id is not an error:
// the tenant lands in the root platform scope, and the bad id is logged so
// misattributed referrals stay visible.
func resolveReferralScope(db *gorm.DB, ref string) string {
	if ref == "" {
		return models.RootTenantID
	}

	var agency models.Tenant
	err := db.Where("id = ? AND role = ?", ref, models.RoleAgency).First(&agency).Error
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"ref": ref,
		}).Warn("Referral id does not match any agency, falling back to platform scope")
		return models.RootTenantID
	}
	return agency.ID
}

// createTenant records the tenant for a newly registered principal. The
// tenant id is the principal's credential id. Registering the same
// principal again under the same role is a no-op; under a different role
// it is a conflict.
func createTenant(db *gorm.DB, id string, role models.TenantRole, parentTenantID string) (*models.Tenant, error) {
	var existing models.Tenant
	err := db.Where("id = ?", id).First(&existing).Error
	if err == nil {
		if existing.Role != role {
			return nil, utils.NewConflictError("Principal already registered under a different role")
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tenant := models.Tenant{
		ID:             id,
		Role:           role,
		ParentTenantID: parentTenantID,
		CreatedAt:      time.Now(),
	}

	if role == models.RoleAgency {
		now := time.Now()
		tenant.TrialStartedAt = &now
		tenant.DownstreamCount = 0
	}

	if err := db.Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// incrementDownstream bumps an agency's merchant count with a single
// atomic SQL update. The increment is best effort: a failure is logged and
// swallowed, never failing the registration it is attached to.
func incrementDownstream(db *gorm.DB, agencyID string) {
	err := db.Model(&models.Tenant{}).
		Where("id = ? AND role = ?", agencyID, models.RoleAgency).
		UpdateColumn("downstream_count", gorm.Expr("downstream_count + 1")).Error
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"agency_id": agencyID,
			"error":     err,
		}).Warn("Failed to increment agency downstream count")
	}
}

// handleRegister handles sign-up: it creates the Cognito user and the
// tenant record in one flow, compensating the Cognito side if the tenant
// record cannot be written.
func handleRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		role, err := models.ParseTenantRole(req.Role)
		if err != nil {
			utils.BadRequestResponse(c, "Unknown role: "+req.Role)
			return
		}
		if role == models.RoleSuperAdmin {
			utils.ForbiddenResponse(c, "Super admin accounts cannot self-register")
			return
		}

		// The recruitment link may also arrive as a query parameter.
		if req.Ref == "" {
			req.Ref = c.Query("ref")
		}

		parentTenantID := ""
		if role == models.RoleMerchant || role == models.RoleSupplier {
			parentTenantID = resolveReferralScope(db, req.Ref)
		}

		userAttributes := []*cognitoidentityprovider.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Username)},
			{Name: aws.String("custom:role"), Value: aws.String(string(role))},
		}
		if parentTenantID != "" {
			userAttributes = append(userAttributes, &cognitoidentityprovider.AttributeType{
				Name:  aws.String("custom:parent_tenant_id"),
				Value: aws.String(parentTenantID),
			})
		}

		signUpInput := &cognitoidentityprovider.SignUpInput{
			ClientId:       aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			Username:       aws.String(req.Username),
			Password:       aws.String(req.Password),
			UserAttributes: userAttributes,
		}
		if secretHash := generateSecretHash(req.Username); secretHash != "" {
			signUpInput.SecretHash = aws.String(secretHash)
		}

		var signUpResult *cognitoidentityprovider.SignUpOutput
		cognitoErr := circuitBreaker.Call(func() error {
			var err error
			signUpResult, err = cognitoClient.SignUp(signUpInput)
			return err
		})
		if cognitoErr != nil {
			if cognitoErr == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.BadRequestResponse(c, "Failed to register user: "+cognitoErr.Error())
			}
			return
		}

		tenant, err := createTenant(db, *signUpResult.UserSub, role, parentTenantID)
		if err != nil {
			// Compensate the orphaned Cognito user before surfacing.
			compensateErr := circuitBreaker.Call(func() error {
				_, deleteErr := cognitoClient.AdminDeleteUser(&cognitoidentityprovider.AdminDeleteUserInput{
					UserPoolId: aws.String(os.Getenv("COGNITO_USER_POOL_ID")),
					Username:   aws.String(req.Username),
				})
				return deleteErr
			})
			if compensateErr != nil {
				logrus.WithFields(logrus.Fields{
					"username": req.Username,
					"error":    compensateErr,
				}).Warn("Failed to compensate orphaned Cognito user")
			}

			utils.RespondError(c, err)
			return
		}

		// Secondary, best-effort bookkeeping: a merchant recruited by a
		// real agency counts toward that agency's billing tier.
		if role == models.RoleMerchant && parentTenantID != "" && parentTenantID != models.RootTenantID {
			incrementDownstream(db, parentTenantID)
		}

		utils.CreatedResponse(c, "Tenant registered successfully", gin.H{
			"tenant_id":        tenant.ID,
			"role":             tenant.Role,
			"parent_tenant_id": tenant.ParentTenantID,
			"message":          "Please confirm email before login.",
		})
	}
}

// handleLogin handles sign-in with circuit breaker protection
func handleLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		authParams := map[string]*string{
			"USERNAME": aws.String(req.Username),
			"PASSWORD": aws.String(req.Password),
		}
		if secretHash := generateSecretHash(req.Username); secretHash != "" {
			authParams["SECRET_HASH"] = aws.String(secretHash)
		}

		authInput := &cognitoidentityprovider.InitiateAuthInput{
			AuthFlow:       aws.String("USER_PASSWORD_AUTH"),
			ClientId:       aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			AuthParameters: authParams,
		}

		var authResult *cognitoidentityprovider.InitiateAuthOutput
		err := circuitBreaker.Call(func() error {
			var cognitoErr error
			authResult, cognitoErr = cognitoClient.InitiateAuth(authInput)
			return cognitoErr
		})
		if err != nil {
			if err == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.UnauthorizedResponse(c, "Invalid credentials")
			}
			return
		}

		accessToken := *authResult.AuthenticationResult.AccessToken
		idToken := *authResult.AuthenticationResult.IdToken

		tenantID, err := extractSubFromToken(idToken)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to extract tenant id from token")
			return
		}

		profile, err := resolveProfile(db, tenantID, req.Username)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to resolve tenant profile")
			return
		}

		sessionTTL := time.Duration(*authResult.AuthenticationResult.ExpiresIn) * time.Second
		tokenSession, err := utils.CreateTokenSession(accessToken, *profile, sessionTTL)
		if err != nil {
			logrus.WithField("error", err).Warn("Failed to create token session")
		}

		response := gin.H{
			"access_token":  accessToken,
			"id_token":      idToken,
			"refresh_token": *authResult.AuthenticationResult.RefreshToken,
			"expires_in":    *authResult.AuthenticationResult.ExpiresIn,
			"token_type":    "Bearer",
			"profile":       profile,
		}
		if tokenSession != nil {
			response["session_id"] = tokenSession.SessionID
		}

		utils.OKResponse(c, "Login successful", response)
	}
}

// handleRefreshToken handles token refresh
func handleRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		authInput := &cognitoidentityprovider.InitiateAuthInput{
			AuthFlow: aws.String("REFRESH_TOKEN_AUTH"),
			ClientId: aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			AuthParameters: map[string]*string{
				"REFRESH_TOKEN": aws.String(req.RefreshToken),
			},
		}

		var authResult *cognitoidentityprovider.InitiateAuthOutput
		err := circuitBreaker.Call(func() error {
			var cognitoErr error
			authResult, cognitoErr = cognitoClient.InitiateAuth(authInput)
			return cognitoErr
		})
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid refresh token")
			return
		}

		utils.OKResponse(c, "Token refreshed successfully", gin.H{
			"access_token": *authResult.AuthenticationResult.AccessToken,
			"expires_in":   *authResult.AuthenticationResult.ExpiresIn,
			"token_type":   "Bearer",
		})
	}
}

// handleVerifyToken reports the resolved scope for the presented token
func handleVerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, role, parentTenantID := middleware.GetUserFromContext(c)

		response := gin.H{
			"tenant_id":        tenantID,
			"role":             role,
			"parent_tenant_id": parentTenantID,
		}

		// A session exists only for logins made through this service;
		// its absence does not invalidate the token itself.
		if tokenSession, err := utils.GetTokenSession(bearerToken(c)); err == nil {
			response["session_id"] = tokenSession.SessionID
			response["session_created_at"] = tokenSession.CreatedAt
			response["session_last_used_at"] = tokenSession.LastUsedAt
		}

		utils.OKResponse(c, "Token is valid", response)
	}
}

// bearerToken strips the Bearer prefix off the Authorization header.
func bearerToken(c *gin.Context) string {
	tokenString := c.GetHeader("Authorization")
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		return tokenString[7:]
	}
	return tokenString
}

// handleLogout revokes the token session
func handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := utils.RevokeTokenSession(bearerToken(c)); err != nil {
			logrus.WithField("error", err).Warn("Failed to revoke token session")
		}
		utils.OKResponse(c, "Logged out successfully", nil)
	}
}

// extractSubFromToken pulls the sub claim out of an id token. The token
// was just issued by Cognito over TLS, so it is parsed without signature
// verification here.
func extractSubFromToken(idToken string) (string, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims format")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token missing sub claim")
	}
	return sub, nil
}

// resolveProfile builds the principal profile from the tenant record.
func resolveProfile(db *gorm.DB, tenantID, email string) (*models.PrincipalProfile, error) {
	var tenant models.Tenant
	if err := db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &models.PrincipalProfile{
		TenantID:       tenant.ID,
		Email:          email,
		Role:           tenant.Role,
		ParentTenantID: tenant.ParentTenantID,
	}, nil
}
