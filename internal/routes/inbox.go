package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/controllers"
	"isp-order-system/internal/services"
)

func runInboxRouter(secureGroup *echo.Group, inboxService services.InboxServiceInterface, logger *zap.Logger) {
	inboxCtrl := controllers.NewInboxController(inboxService, logger)
	{
		secureGroup.GET("/inbox", inboxCtrl.GetInbox)
	}
}
