package services

import (
	"context"
	"fmt"

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

// EquipmentService orchestrates every equipment transition: guard, state
// machine, store write, feed publication, fan-out — in that order. The
// store write is the commit point; nothing is published and no notification
// is created if it fails.
type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	notifier      *notify.Service
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	notifier *notify.Service,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		notifier:      notifier,
		bus:           bus,
		logger:        logger,
	}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	return s.equipmentRepo.GetEquipments(ctx, filter)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return s.equipmentRepo.FindEquipment(ctx, id)
}

// CreateEquipment registers a new record for the assistant's own lab. The
// record starts with both approval slots empty.
func (s *EquipmentService) CreateEquipment(ctx context.Context, actor authz.Actor, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	if actor.Role != authz.RoleLabAssistant || !actor.LabID.Valid {
		return nil, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only a lab assistant can register equipment for their lab")
	}

	eq := &entities.Equipment{
		Name:            payload.Name,
		EquipmentTypeID: payload.EquipmentTypeID,
		LabID:           actor.LabID.Uint64,
		Rate:            payload.Rate,
		Quantity:        payload.Quantity,
		CreatedBy:       actor.ID,
	}
	eq, err := s.equipmentRepo.CreateEquipment(ctx, eq)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.EventInsert, eq)
	s.notify(ctx, actor.ID, notify.ActionCreated, eq,
		fmt.Sprintf("%s was added to the inventory", eq.Name))
	return eq, nil
}

// UpdateEquipment applies a creator edit while the record is unapproved.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditEquipment(actor, eq) {
		return nil, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"equipment can only be edited by its creator before approval")
	}

	eq.Name = payload.Name
	eq.EquipmentTypeID = payload.EquipmentTypeID
	eq.Rate = payload.Rate
	eq.Quantity = payload.Quantity
	if err := s.equipmentRepo.UpdateDetails(ctx, eq); err != nil {
		return nil, err
	}

	eq, err = s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, eventbus.EventUpdate, eq)
	s.notify(ctx, actor.ID, notify.ActionEdited, eq,
		fmt.Sprintf("%s was updated", eq.Name))
	return eq, nil
}

// ApproveEquipment records the approval slot matching the actor's role.
// Re-approving an already-set slot is a quiet no-op: state is unchanged and
// no notification goes out, so duplicate client requests stay invisible.
func (s *EquipmentService) ApproveEquipment(ctx context.Context, actor authz.Actor, id uint64) (*entities.Equipment, error) {
	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	var wantChange bool
	var action string
	switch actor.Role {
	case authz.RoleLabIncharge:
		wantChange, err = workflow.RecordIncharge(eq, actor)
		action = "incharge approval"
	case authz.RoleHOD:
		wantChange, err = workflow.RecordHOD(eq, actor)
		action = "HOD approval"
	default:
		err = apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"role cannot approve equipment")
	}
	if err != nil {
		return nil, err
	}
	if !wantChange {
		// Slot already set; tolerate the retry.
		return eq, nil
	}

	var changed bool
	if actor.Role == authz.RoleLabIncharge {
		changed, err = s.equipmentRepo.SetInchargeApproval(ctx, id, actor.ID)
	} else {
		changed, err = s.equipmentRepo.SetHODApproval(ctx, id, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	eq, err = s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		// A concurrent request won the slot; same terminal state, no event.
		return eq, nil
	}

	s.publish(ctx, eventbus.EventUpdate, eq)
	s.notify(ctx, actor.ID, notify.ActionApproved, eq,
		fmt.Sprintf("%s received %s", eq.Name, action))
	return eq, nil
}

// RequestDelete soft-deletes the record into a tombstone awaiting HOD
// ratification.
func (s *EquipmentService) RequestDelete(ctx context.Context, actor authz.Actor, id uint64) error {
	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteEquipment(actor, eq) {
		return apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"actor cannot delete this equipment")
	}

	if err := s.equipmentRepo.MarkPendingDelete(ctx, id); err != nil {
		return err
	}

	eq, err = s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, eventbus.EventUpdate, eq)
	s.notify(ctx, actor.ID, notify.ActionDeleteRequested, eq,
		fmt.Sprintf("deletion of %s awaits HOD ratification", eq.Name))
	return nil
}

// RatifyDelete is the HOD's verdict on a tombstone: purge the row for good
// or restore it.
func (s *EquipmentService) RatifyDelete(ctx context.Context, actor authz.Actor, id uint64, purge bool) error {
	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanRatifyDelete(actor, eq) {
		return apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only the head of department can ratify a deletion")
	}

	if purge {
		if err := s.equipmentRepo.PurgeEquipment(ctx, id); err != nil {
			return err
		}
		s.publish(ctx, eventbus.EventDelete, eq)
		s.notify(ctx, actor.ID, notify.ActionPurged, eq,
			fmt.Sprintf("%s was removed from the inventory", eq.Name))
		return nil
	}

	if err := s.equipmentRepo.RestoreEquipment(ctx, id); err != nil {
		return err
	}
	eq, err = s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, eventbus.EventUpdate, eq)
	s.notify(ctx, actor.ID, notify.ActionRestored, eq,
		fmt.Sprintf("%s was restored", eq.Name))
	return nil
}

func (s *EquipmentService) publish(ctx context.Context, eventType eventbus.EventType, eq *entities.Equipment) {
	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventType,
		Table: reconcile.TableEquipments,
		Row:   eq,
	})
}

// notify is best-effort: the transition has committed, so a fan-out failure
// is logged and swallowed.
func (s *EquipmentService) notify(ctx context.Context, actorID uint64, action string, eq *entities.Equipment, message string) {
	if err := s.notifier.NotifyAll(ctx, actorID, action, notify.EntityEquipment, eq.ID, eq.Name, message, nil); err != nil {
		s.logger.Warn("equipment notification fan-out failed",
			zap.Uint64("equipmentID", eq.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
