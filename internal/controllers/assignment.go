package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/services"
	"isp-order-system/pkg/utils"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(assignmentService services.AssignmentServiceInterface, logger *zap.Logger) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService, logger: logger}
}

// GetCandidates — рейтинг кандидатов роли по возрастанию загрузки,
// для диспетчера, выбирающего следующего исполнителя.
func (c *AssignmentController) GetCandidates(ctx echo.Context) error {
	role := ctx.QueryParam("role")

	kind, err := orderkind.Parse(ctx.QueryParam("kind"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var region *string
	if r := ctx.QueryParam("region"); r != "" {
		region = &r
	}

	candidates, err := c.assignmentService.RankCandidates(ctx.Request().Context(), role, kind, region)
	if err != nil {
		c.logger.Error("Ошибка получения кандидатов", zap.String("role", role), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, candidates, "Кандидаты получены", http.StatusOK)
}
