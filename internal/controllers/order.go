package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/services"
	"isp-order-system/pkg/utils"
)

type OrderController struct {
	orderService      services.OrderServiceInterface
	transitionService services.TransitionServiceInterface
	logger            *zap.Logger
}

func NewOrderController(
	orderService services.OrderServiceInterface,
	transitionService services.TransitionServiceInterface,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		orderService:      orderService,
		transitionService: transitionService,
		logger:            logger,
	}
}

// parseOrderRef разбирает :kind и :id из пути.
func parseOrderRef(ctx echo.Context) (entities.OrderRef, error) {
	kind, err := orderkind.Parse(ctx.Param("kind"))
	if err != nil {
		return entities.OrderRef{}, err
	}
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return entities.OrderRef{}, echo.NewHTTPError(http.StatusBadRequest, "некорректный id заявки")
	}
	return entities.OrderRef{Kind: kind, ID: id}, nil
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	var payload dto.CreateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	order, err := c.orderService.CreateOrder(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("Ошибка создания заявки", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, order, "Заявка успешно создана", http.StatusCreated)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	ref, err := parseOrderRef(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	order, err := c.orderService.FindOrder(ctx.Request().Context(), ref)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, order, "Заявка найдена", http.StatusOK)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	kind, err := orderkind.Parse(ctx.Param("kind"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	limit, _ := strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)

	orders, total, err := c.orderService.GetOrders(ctx.Request().Context(), kind, limit, offset)
	if err != nil {
		c.logger.Error("Ошибка получения списка заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, orders, "Заявки успешно получены", http.StatusOK, total)
}

// TransitionOrder — перевод заявки по ребру графа статусов.
func (c *OrderController) TransitionOrder(ctx echo.Context) error {
	ref, err := parseOrderRef(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	actorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.TransitionOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	order, err := c.transitionService.Transition(ctx.Request().Context(), ref, actorID, payload.TargetStatus, payload.RecipientID)
	if err != nil {
		c.logger.Warn("Переход отклонён",
			zap.String("kind", string(ref.Kind)), zap.Uint64("orderID", ref.ID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, order, "Заявка передана дальше", http.StatusOK)
}

func (c *OrderController) CancelOrder(ctx echo.Context) error {
	ref, err := parseOrderRef(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	actorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	order, err := c.transitionService.Cancel(ctx.Request().Context(), ref, actorID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, order, "Заявка отменена", http.StatusOK)
}

// RequestMaterials — запрос материалов под заявку (списание произойдёт
// на ребре входа на склад).
func (c *OrderController) RequestMaterials(ctx echo.Context) error {
	ref, err := parseOrderRef(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	actorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.MaterialRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	req, err := c.transitionService.RequestMaterials(ctx.Request().Context(), ref, actorID, payload.MaterialID, payload.Quantity)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, req, "Запрос материалов создан", http.StatusCreated)
}

func (c *OrderController) GetHistory(ctx echo.Context) error {
	ref, err := parseOrderRef(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	limit, _ := strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)

	history, err := c.orderService.GetHistory(ctx.Request().Context(), ref, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, history, "История передач получена", http.StatusOK)
}
