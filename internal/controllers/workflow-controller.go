package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lab-inventory-system/internal/authz"
	"lab-inventory-system/internal/dto"
	"lab-inventory-system/internal/notify"
	"lab-inventory-system/internal/services"
	"lab-inventory-system/internal/workflow"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/utils"
)

// WorkflowController is the generic surface over the permission guards and
// state transitions: the UI asks guards by name to decide what to offer,
// and may submit transitions by kind instead of hitting the per-resource
// endpoints. Both paths run the same predicates and services.
type WorkflowController struct {
	equipmentService *services.EquipmentService
	transferService  *services.TransferService
	issueService     *services.IssueService
	logger           *zap.Logger
}

func NewWorkflowController(
	equipmentService *services.EquipmentService,
	transferService *services.TransferService,
	issueService *services.IssueService,
	logger *zap.Logger,
) *WorkflowController {
	return &WorkflowController{
		equipmentService: equipmentService,
		transferService:  transferService,
		issueService:     issueService,
		logger:           logger,
	}
}

// EvaluateGuard answers whether the named guard permits the action for the
// authenticated actor. Guards are total: a missing entity or an unknown name
// answers false, never an error.
func (c *WorkflowController) EvaluateGuard(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.GuardRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	target := c.loadTarget(ctx.Request().Context(), payload)
	allowed := authz.Evaluate(payload.Name, actor, target)

	return utils.SuccessResponse(ctx, map[string]interface{}{
		"name":    payload.Name,
		"allowed": allowed,
	}, "guard evaluated", http.StatusOK)
}

// loadTarget resolves the referenced entities. Load failures leave the
// corresponding target field nil, which every guard treats as a denial.
func (c *WorkflowController) loadTarget(ctx context.Context, payload dto.GuardRequestDTO) authz.Target {
	var target authz.Target

	if payload.EquipmentID != nil {
		if eq, err := c.equipmentService.FindEquipment(ctx, *payload.EquipmentID); err == nil {
			target.Equipment = eq
			target.FromLabID = eq.LabID
		}
	}
	if payload.TransferID != nil {
		if tr, err := c.transferService.FindTransfer(ctx, *payload.TransferID); err == nil {
			target.Transfer = tr
		}
	}
	if payload.IssueID != nil {
		if is, err := c.issueService.FindIssue(ctx, *payload.IssueID); err == nil {
			target.Issue = is
			if target.Equipment == nil {
				if eq, err := c.equipmentService.FindEquipment(ctx, is.EquipmentID); err == nil {
					target.Equipment = eq
				}
			}
		}
	}
	if payload.FromLabID != nil {
		target.FromLabID = *payload.FromLabID
	}
	return target
}

// Transition dispatches a transition by entity and kind. The same services
// back the per-resource endpoints, so outcomes are identical either way.
func (c *WorkflowController) Transition(ctx echo.Context) error {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.TransitionRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("%v", err), c.logger)
	}

	reqCtx := ctx.Request().Context()
	var result interface{}

	switch {
	case payload.EntityKind == notify.EntityEquipment &&
		(payload.TransitionKind == workflow.TransitionApproveIncharge || payload.TransitionKind == workflow.TransitionApproveHOD):
		result, err = c.equipmentService.ApproveEquipment(reqCtx, actor, payload.EntityID)
	case payload.EntityKind == notify.EntityTransfer && payload.TransitionKind == workflow.TransitionMarkReceived:
		result, err = c.transferService.ReceiveTransfer(reqCtx, actor, payload.EntityID)
	case payload.EntityKind == notify.EntityIssue && payload.TransitionKind == workflow.TransitionResolve:
		result, err = c.issueService.ResolveIssue(reqCtx, actor, payload.EntityID, dto.ResolveIssueDTO{
			Remark:     payload.Remark,
			RepairCost: payload.RepairCost,
		})
	default:
		err = apperrors.NewInvalidInputError("unknown transition %s for %s",
			payload.TransitionKind, payload.EntityKind)
	}
	if err != nil {
		// Surface the terminal reason; rejections are not retryable.
		var rejection *apperrors.Rejection
		if errors.As(err, &rejection) {
			c.logger.Info("transition rejected",
				zap.String("entityKind", payload.EntityKind),
				zap.String("transitionKind", payload.TransitionKind),
				zap.Uint64("entityID", payload.EntityID),
				zap.String("reason", rejection.Reason),
			)
		}
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, result, "transition applied", http.StatusOK)
}
