package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/services"
	"isp-order-system/pkg/utils"
)

type InboxController struct {
	inboxService services.InboxServiceInterface
	logger       *zap.Logger
}

func NewInboxController(inboxService services.InboxServiceInterface, logger *zap.Logger) *InboxController {
	return &InboxController{inboxService: inboxService, logger: logger}
}

// GetInbox — «заявки, лежащие сейчас у меня» для авторизованного актора.
func (c *InboxController) GetInbox(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	role, err := utils.GetUserRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	kind, err := orderkind.Parse(ctx.QueryParam("kind"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var region *string
	if r := ctx.QueryParam("region"); r != "" {
		region = &r
	}
	limit, _ := strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)

	items, err := c.inboxService.InboxFor(reqCtx, userID, role, kind, region, limit, offset)
	if err != nil {
		c.logger.Error("Ошибка получения инбокса", zap.Uint64("userID", userID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, items, "Инбокс получен", http.StatusOK)
}
