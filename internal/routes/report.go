package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/controllers"
	"isp-order-system/internal/services"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger) {
	reportCtrl := controllers.NewReportController(reportService, logger)
	{
		secureGroup.GET("/reports/orders.xlsx", reportCtrl.DownloadOrdersReport)
	}
}
