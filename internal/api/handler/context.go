package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docvault/document-system/internal/api/middleware"
	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/pkg/token"
)

// ctxViewer returns the caller identity injected by the Auth middleware.
// A missing user id means the route was mounted without Auth.
func ctxViewer(c echo.Context) (domain.Viewer, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return domain.Viewer{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get(middleware.ContextRole).(string)
	return domain.Viewer{UserID: userID, Role: role}, nil
}

func ctxClaims(c echo.Context) (*token.Claims, error) {
	claims, ok := c.Get(middleware.ContextClaims).(*token.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
