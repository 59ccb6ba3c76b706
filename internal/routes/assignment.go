package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/controllers"
	"isp-order-system/internal/services"
)

func runAssignmentRouter(secureGroup *echo.Group, assignmentService services.AssignmentServiceInterface, logger *zap.Logger) {
	assignmentCtrl := controllers.NewAssignmentController(assignmentService, logger)
	{
		secureGroup.GET("/candidates", assignmentCtrl.GetCandidates)
	}
}
