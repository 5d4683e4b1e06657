package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lab-inventory-system/internal/dto"
	"lab-inventory-system/internal/services"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/types"
	"lab-inventory-system/pkg/utils"
)

type TransferController struct {
	transferService *services.TransferService
	logger          *zap.Logger
}

func NewTransferController(transferService *services.TransferService, logger *zap.Logger) *TransferController {
	return &TransferController{transferService: transferService, logger: logger}
}

func (c *TransferController) GetTransfers(ctx echo.Context) error {
	filter := utils.ParseFilter(ctx)

	items, total, err := c.transferService.GetTransfers(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.ListResponse{
		Items:      items,
		Pagination: types.NewPagination(total, filter.Limit, filter.Offset),
	}, "transfers", http.StatusOK)
}

func (c *TransferController) FindTransfer(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	tr, err := c.transferService.FindTransfer(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, tr, "transfer", http.StatusOK)
}

func (c *TransferController) CreateTransfer(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	tr, err := c.transferService.CreateTransfer(ctx.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, tr, "transfer initiated", http.StatusCreated)
}

func (c *TransferController) ReceiveTransfer(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	tr, err := c.transferService.ReceiveTransfer(ctx.Request().Context(), actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, tr, "transfer received", http.StatusOK)
}

func (c *TransferController) DeleteTransfer(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.transferService.DeleteTransfer(ctx.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "transfer withdrawn", http.StatusOK)
}
