package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Lousuarez/LourenTask/internal/lifecycle"
	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/sla"
	"github.com/Lousuarez/LourenTask/pkg/config"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/logger"
)

var (
	classifier sla.Classifier
	trendDays  int
	executor   *lifecycle.Executor
)

// Init wires the handler package after config and database are up: the
// SLA classifier's canonical timezone, the dashboard trend window and the
// transition executor backed by the service database.
func Init(cfg *config.Config) error {
	loc, err := time.LoadLocation(cfg.Engine.SLATimezone)
	if err != nil {
		return err
	}
	classifier = sla.New(loc)
	trendDays = cfg.Engine.TrendDays
	executor = lifecycle.NewExecutor(lifecycle.NewGormStore(database.GetDB()), logger.GetLogger())
	return nil
}

// currentUser loads the authenticated user record from the claims set by
// the auth middleware. Visibility scoping needs the full record, not just
// the token claims.
func currentUser(c echo.Context) (*model.User, error) {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found")
	}
	if !user.Active {
		return nil, echo.NewHTTPError(http.StatusForbidden, "user is inactive")
	}
	return &user, nil
}

// activeTenant returns the tenant context carried in the JWT, required
// for record creation.
func activeTenant(c echo.Context) (uint, bool) {
	tenantID, ok := c.Get("tenant_id").(uint)
	return tenantID, ok
}
