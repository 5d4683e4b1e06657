package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lab-inventory-system/internal/services"
	"lab-inventory-system/pkg/utils"
)

// ReferenceController serves the lookup data behind the forms.
type ReferenceController struct {
	referenceService *services.ReferenceService
	logger           *zap.Logger
}

func NewReferenceController(referenceService *services.ReferenceService, logger *zap.Logger) *ReferenceController {
	return &ReferenceController{referenceService: referenceService, logger: logger}
}

func (c *ReferenceController) GetLabs(ctx echo.Context) error {
	labs, err := c.referenceService.GetLabs(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, labs, "labs", http.StatusOK)
}

func (c *ReferenceController) GetEquipmentTypes(ctx echo.Context) error {
	result, err := c.referenceService.GetEquipmentTypes(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "equipment types", http.StatusOK)
}

func (c *ReferenceController) GetUsers(ctx echo.Context) error {
	users, err := c.referenceService.GetUsers(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, users, "users", http.StatusOK)
}
