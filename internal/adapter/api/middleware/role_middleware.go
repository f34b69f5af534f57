package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{
		userRepo: userRepo,
	}
}

// Require allows the request through only when the authenticated user holds
// one of the given roles. The resolved user is stored in the context for the
// handler.
func (m *RoleMiddleware) Require(roles ...entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("uid").(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			user, err := m.userRepo.GetByID(c.Request().Context(), uid)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify role")
			}

			for _, role := range roles {
				if user.Role == role {
					c.Set("user", user)
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient privileges")
		}
	}
}

func (m *RoleMiddleware) TeachersOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Require(entity.RoleTeacher, entity.RoleAdministrator)(next)
}

func (m *RoleMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Require(entity.RoleAdministrator)(next)
}
