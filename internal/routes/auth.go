package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/controllers"
	"isp-order-system/internal/services"
)

func runAuthRouter(api *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger)
	{
		api.POST("/auth/login", authCtrl.Login)
	}
}
