package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/yuva/core/user"
)

// requireRole restricts a route to actors passing `allowed`.
func requireRole(allowed func(user.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := actor(ctx)
			if err != nil {
				return err
			}
			if !allowed(usr) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func isAdmin(u user.User) bool    { return u.IsAdmin() }
func isEmployee(u user.User) bool { return u.IsEmployee() }
