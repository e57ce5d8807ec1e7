// internal/middleware/permissions.go

package middleware

import (
	"fmt"
	"net/http"

	"fix-my-city/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole створює middleware для перевірки однієї з можливих ролей
// 🔒 Використовується коли endpoint доступний для кількох ролей
func RequireAnyRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Отримуємо принципала з контексту (встановлюється AuthMiddleware)
		principal := CurrentPrincipal(c)
		if principal == nil {
			abort(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		for _, allowed := range roles {
			if principal.Role == allowed {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden,
			fmt.Sprintf("User role %s is not authorized to access this route", principal.Role))
	}
}

// RequireRole перевіряє мінімальну роль за ієрархією
func RequireRole(minRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			abort(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		// Перевіряємо чи роль користувача вища або рівна необхідній
		if !principal.Role.IsHigherOrEqual(minRole) {
			abort(c, http.StatusForbidden,
				fmt.Sprintf("User role %s is not authorized to access this route", principal.Role))
			return
		}

		c.Next()
	}
}
