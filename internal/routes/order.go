package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/controllers"
	"isp-order-system/internal/services"
)

func runOrderRouter(secureGroup *echo.Group, orderService services.OrderServiceInterface, transitionService services.TransitionServiceInterface, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(orderService, transitionService, logger)
	{
		secureGroup.POST("/orders", orderCtrl.CreateOrder)
		secureGroup.GET("/orders/:kind", orderCtrl.GetOrders)
		secureGroup.GET("/orders/:kind/:id", orderCtrl.FindOrder)
		secureGroup.POST("/orders/:kind/:id/transition", orderCtrl.TransitionOrder)
		secureGroup.POST("/orders/:kind/:id/cancel", orderCtrl.CancelOrder)
		secureGroup.POST("/orders/:kind/:id/materials", orderCtrl.RequestMaterials)
		secureGroup.GET("/orders/:kind/:id/history", orderCtrl.GetHistory)
	}
}
