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

type IssueController struct {
	issueService *services.IssueService
	logger       *zap.Logger
}

func NewIssueController(issueService *services.IssueService, logger *zap.Logger) *IssueController {
	return &IssueController{issueService: issueService, logger: logger}
}

func (c *IssueController) GetIssues(ctx echo.Context) error {
	filter := utils.ParseFilter(ctx)

	items, total, err := c.issueService.GetIssues(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.ListResponse{
		Items:      items,
		Pagination: types.NewPagination(total, filter.Limit, filter.Offset),
	}, "issues", http.StatusOK)
}

func (c *IssueController) FindIssue(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	is, err := c.issueService.FindIssue(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, is, "issue", http.StatusOK)
}

func (c *IssueController) ReportIssue(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateIssueDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	is, err := c.issueService.ReportIssue(ctx.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, is, "issue reported", http.StatusCreated)
}

func (c *IssueController) ResolveIssue(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ResolveIssueDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	is, err := c.issueService.ResolveIssue(ctx.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, is, "issue resolved", http.StatusOK)
}
