package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"lab-inventory-system/internal/authz"
	"lab-inventory-system/internal/dto"
	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/notify"
	"lab-inventory-system/internal/reconcile"
	"lab-inventory-system/internal/repositories"
	"lab-inventory-system/internal/workflow"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/eventbus"
	"lab-inventory-system/pkg/types"
)

// IssueService handles defect reports against fully approved equipment.
type IssueService struct {
	issueRepo     repositories.IssueRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	notifier      *notify.Service
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewIssueService(
	issueRepo repositories.IssueRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	notifier *notify.Service,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *IssueService {
	return &IssueService{
		issueRepo:     issueRepo,
		equipmentRepo: equipmentRepo,
		notifier:      notifier,
		bus:           bus,
		logger:        logger,
	}
}

func (s *IssueService) GetIssues(ctx context.Context, filter types.Filter) ([]entities.Issue, uint64, error) {
	return s.issueRepo.GetIssues(ctx, filter)
}

func (s *IssueService) FindIssue(ctx context.Context, id uint64) (*entities.Issue, error) {
	return s.issueRepo.FindIssue(ctx, id)
}

// ReportIssue opens a defect report against equipment in the incharge's lab.
func (s *IssueService) ReportIssue(ctx context.Context, actor authz.Actor, payload dto.CreateIssueDTO) (*entities.Issue, error) {
	eq, err := s.equipmentRepo.FindEquipment(ctx, payload.EquipmentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReportIssue(actor, eq) {
		return nil, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"actor cannot report an issue for this equipment")
	}

	is := &entities.Issue{
		EquipmentID: eq.ID,
		ReportedBy:  actor.ID,
		Description: payload.Description,
	}
	is, err = s.issueRepo.CreateIssue(ctx, is)
	if err != nil {
		return nil, err
	}

	// The feed row carries the equipment projection so lab-filtered
	// sessions can match the issue against its equipment's lab.
	is.Equipment = eq
	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventInsert,
		Table: reconcile.TableIssues,
		Row:   is,
	})
	s.notify(ctx, actor.ID, notify.ActionReported, is, eq.Name,
		fmt.Sprintf("an issue was reported for %s", eq.Name))
	return is, nil
}

// ResolveIssue closes an open report exactly once, recording the optional
// remark and repair cost permanently.
func (s *IssueService) ResolveIssue(ctx context.Context, actor authz.Actor, id uint64, payload dto.ResolveIssueDTO) (*entities.Issue, error) {
	is, err := s.issueRepo.FindIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipmentRepo.FindEquipment(ctx, is.EquipmentID)
	if err != nil {
		return nil, err
	}

	remark := null.StringFromPtr(payload.Remark)
	cost := null.Float64FromPtr(payload.RepairCost)
	now := time.Now()
	if err := workflow.Resolve(is, eq, actor, remark, cost, now); err != nil {
		return nil, err
	}

	changed, err := s.issueRepo.MarkResolved(ctx, id, actor.ID, remark, cost, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"issue has already been resolved")
	}

	is, err = s.issueRepo.FindIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	is.Equipment = eq
	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventUpdate,
		Table: reconcile.TableIssues,
		Row:   is,
	})
	s.notify(ctx, actor.ID, notify.ActionResolved, is, eq.Name,
		fmt.Sprintf("the issue for %s was resolved", eq.Name))
	return is, nil
}

func (s *IssueService) notify(ctx context.Context, actorID uint64, action string, is *entities.Issue, entityName, message string) {
	if err := s.notifier.NotifyAll(ctx, actorID, action, notify.EntityIssue, is.ID, entityName, message, nil); err != nil {
		s.logger.Warn("issue notification fan-out failed",
			zap.Uint64("issueID", is.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
