package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/scope"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/jwtutil"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

// Register handles user registration
func Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name            string        `json:"name"`
		Email           string        `json:"email"`
		Password        string        `json:"password"`
		TenantID        uint          `json:"tenant_id"`
		TenantIDs       model.IDArray `json:"tenant_ids,omitempty"`
		VisibilityScope string        `json:"visibility_scope,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.TenantID == 0 {
		prometheus.RecordError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and tenant_id are required"})
	}

	visibility := req.VisibilityScope
	if visibility == "" {
		visibility = model.VisibilityAll
	}
	switch visibility {
	case model.VisibilityAll, model.VisibilityOwn, model.VisibilitySector:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visibility scope"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Name:            req.Name,
		Email:           req.Email,
		Password:        string(hashed),
		Active:          true,
		TenantID:        req.TenantID,
		TenantIDs:       req.TenantIDs,
		VisibilityScope: visibility,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.Uint("id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{"message": "user registered successfully", "user": user})
}

// Login authenticates a user and issues a JWT carrying the active tenant
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TenantID *uint  `json:"tenant_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.Active {
		prometheus.RecordError("inactive_user")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user is inactive"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// The active tenant must be inside the user's resolved tenant set
	tenants := scope.Tenants(&user)
	if len(tenants) == 0 {
		log.Error("User has no tenant membership", zap.Uint("user_id", user.ID))
		prometheus.RecordError("no_tenant_membership")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user has no tenant membership"})
	}
	activeTenantID := tenants[0]
	if req.TenantID != nil {
		if !scope.Allowed(tenants, *req.TenantID) {
			log.Error("User does not have access to the requested tenant",
				zap.String("email", req.Email),
				zap.Uint("tenant_id", *req.TenantID))
			prometheus.RecordError("tenant_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the specified tenant"})
		}
		activeTenantID = *req.TenantID
	}

	var tenantName string
	var tenant model.Tenant
	if result := database.GetDB().Select("name").First(&tenant, activeTenantID); result.Error == nil {
		tenantName = tenant.Name
	}

	token, err := jwtutil.GenerateTokenWithTenant(user.Email, user.ID, &activeTenantID, tenantName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", activeTenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token":            token,
		"user":             user,
		"tenant_id":        activeTenantID,
		"tenant_ids":       tenants,
		"visibility_scope": user.VisibilityScope,
	})
}
