package services

import (
	"context"
	"fmt"
	"time"

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

// TransferService moves fully approved equipment between labs. Initiating a
// transfer reassigns the record to the destination lab immediately; the
// receive transition is the destination incharge's acknowledgement, not the
// move itself.
type TransferService struct {
	transferRepo  repositories.TransferRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	notifier      *notify.Service
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewTransferService(
	transferRepo repositories.TransferRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	notifier *notify.Service,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		transferRepo:  transferRepo,
		equipmentRepo: equipmentRepo,
		notifier:      notifier,
		bus:           bus,
		logger:        logger,
	}
}

func (s *TransferService) GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error) {
	return s.transferRepo.GetTransfers(ctx, filter)
}

func (s *TransferService) FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error) {
	return s.transferRepo.FindTransfer(ctx, id)
}

// CreateTransfer initiates a move of fully approved equipment out of the
// actor's lab. The insert and the lab reassignment commit together.
func (s *TransferService) CreateTransfer(ctx context.Context, actor authz.Actor, payload dto.CreateTransferDTO) (*entities.Transfer, error) {
	eq, err := s.equipmentRepo.FindEquipment(ctx, payload.EquipmentID)
	if err != nil {
		return nil, err
	}
	if payload.ToLabID == eq.LabID {
		return nil, apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"destination lab must differ from the current lab")
	}
	if !authz.CanCreateTransfer(actor, eq, eq.LabID) {
		return nil, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"actor cannot transfer this equipment out of its lab")
	}

	tr := &entities.Transfer{
		EquipmentID: eq.ID,
		FromLabID:   eq.LabID,
		ToLabID:     payload.ToLabID,
		InitiatedBy: actor.ID,
	}
	tr, moved, err := s.transferRepo.CreateWithLabMove(ctx, tr)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventInsert,
		Table: reconcile.TableTransfers,
		Row:   tr,
	})
	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventUpdate,
		Table: reconcile.TableEquipments,
		Row:   moved,
	})
	s.notify(ctx, actor.ID, notify.ActionCreated, tr, eq.Name,
		fmt.Sprintf("%s is being transferred to another lab", eq.Name))
	return tr, nil
}

// ReceiveTransfer acknowledges the transfer at the destination. A second
// receive is an invalid transition, never a silent retry.
func (s *TransferService) ReceiveTransfer(ctx context.Context, actor authz.Actor, id uint64) (*entities.Transfer, error) {
	tr, err := s.transferRepo.FindTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := workflow.MarkReceived(tr, actor, now); err != nil {
		return nil, err
	}

	changed, err := s.transferRepo.MarkReceived(ctx, id, actor.ID, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost the race to a concurrent receive.
		return nil, apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"transfer has already been received")
	}

	tr, err = s.transferRepo.FindTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventUpdate,
		Table: reconcile.TableTransfers,
		Row:   tr,
	})

	entityName := s.equipmentName(ctx, tr.EquipmentID)
	s.notify(ctx, actor.ID, notify.ActionReceived, tr, entityName,
		fmt.Sprintf("%s was received at its destination lab", entityName))
	return tr, nil
}

// DeleteTransfer withdraws a transfer that has not been received yet. The
// equipment stays in the destination lab; sending it back is a reverse
// transfer, not a delete.
func (s *TransferService) DeleteTransfer(ctx context.Context, actor authz.Actor, id uint64) error {
	tr, err := s.transferRepo.FindTransfer(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteTransfer(actor, tr) {
		return apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only the initiator can withdraw a pending transfer")
	}

	if err := s.transferRepo.DeletePending(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, eventbus.Mutation{
		Type:  eventbus.EventDelete,
		Table: reconcile.TableTransfers,
		Row:   tr,
	})
	return nil
}

func (s *TransferService) equipmentName(ctx context.Context, equipmentID uint64) string {
	eq, err := s.equipmentRepo.FindEquipment(ctx, equipmentID)
	if err != nil {
		return "equipment"
	}
	return eq.Name
}

func (s *TransferService) notify(ctx context.Context, actorID uint64, action string, tr *entities.Transfer, entityName, message string) {
	if err := s.notifier.NotifyAll(ctx, actorID, action, notify.EntityTransfer, tr.ID, entityName, message, nil); err != nil {
		s.logger.Warn("transfer notification fan-out failed",
			zap.Uint64("transferID", tr.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
