package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/pkg/contextkeys"
	apperrors "isp-order-system/pkg/errors"
	"isp-order-system/pkg/service"
	"isp-order-system/pkg/utils"
)

// Auth проверяет Bearer-токен и кладёт идентичность актора (id + роль)
// в контекст запроса. Само заведение учёток — вне ядра.
func Auth(jwtSvc service.JWTServiceInterface, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
			}

			claims, err := jwtSvc.ParseToken(parts[1])
			if err != nil {
				logger.Debug("Отклонён токен", zap.Error(err))
				return utils.ErrorResponse(c, err)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, contextkeys.UserRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
