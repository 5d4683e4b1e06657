package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lab-inventory-system/internal/authz"
	"lab-inventory-system/internal/dto"
	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/notify"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/eventbus"
)

type equipmentFixture struct {
	service       *EquipmentService
	equipmentRepo *fakeEquipmentRepo
	notifications *fakeNotificationRepo
}

func newEquipmentFixture(seed ...*entities.Equipment) *equipmentFixture {
	logger := zap.NewNop()
	bus := eventbus.New(logger)
	equipmentRepo := newFakeEquipmentRepo(seed...)
	notificationRepo := newFakeNotificationRepo(1, 2, 3, 4)
	notifier := notify.NewService(notificationRepo, newFakeCacheRepo(), bus, logger)

	return &equipmentFixture{
		service:       NewEquipmentService(equipmentRepo, notifier, bus, logger),
		equipmentRepo: equipmentRepo,
		notifications: notificationRepo,
	}
}

func seedUnapproved() *entities.Equipment {
	return &entities.Equipment{ID: 10, Name: "Microscope", EquipmentTypeID: 1, LabID: 5, CreatedBy: 1, Quantity: 2}
}

func seedApproved() *entities.Equipment {
	eq := seedUnapproved()
	eq.ApprovedByIncharge = null.Uint64From(2)
	eq.ApprovedByHOD = null.Uint64From(3)
	eq.RecomputeApproval()
	return eq
}

var (
	testAssistant = authz.Actor{ID: 1, Role: authz.RoleLabAssistant, LabID: null.Uint64From(5)}
	testIncharge  = authz.Actor{ID: 2, Role: authz.RoleLabIncharge, LabID: null.Uint64From(5)}
	testHOD       = authz.Actor{ID: 3, Role: authz.RoleHOD}
)

func TestCreateEquipment(t *testing.T) {
	f := newEquipmentFixture()

	eq, err := f.service.CreateEquipment(context.Background(), testAssistant, dto.CreateEquipmentDTO{
		Name: "Centrifuge", EquipmentTypeID: 2, Rate: 1500, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), eq.LabID, "record lands in the assistant's own lab")
	assert.Equal(t, uint64(1), eq.CreatedBy)
	assert.False(t, eq.FullyApproved)
	assert.Equal(t, 1, f.notifications.fanouts)
}

func TestCreateEquipmentRequiresAssistantWithLab(t *testing.T) {
	f := newEquipmentFixture()

	_, err := f.service.CreateEquipment(context.Background(), testIncharge, dto.CreateEquipmentDTO{Name: "X", EquipmentTypeID: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	noLab := authz.Actor{ID: 9, Role: authz.RoleLabAssistant}
	_, err = f.service.CreateEquipment(context.Background(), noLab, dto.CreateEquipmentDTO{Name: "X", EquipmentTypeID: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	assert.Zero(t, f.notifications.fanouts)
}

func TestUpdateEquipmentCreatorOnlyBeforeApproval(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())

	eq, err := f.service.UpdateEquipment(context.Background(), testAssistant, 10, dto.UpdateEquipmentDTO{
		Name: "Electron Microscope", EquipmentTypeID: 1, Rate: 9000, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Electron Microscope", eq.Name)

	f2 := newEquipmentFixture(seedApproved())
	_, err = f2.service.UpdateEquipment(context.Background(), testAssistant, 10, dto.UpdateEquipmentDTO{Name: "Y", EquipmentTypeID: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized, "fully approved records are frozen")
}

func TestApproveEquipmentBothSlots(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())
	ctx := context.Background()

	eq, err := f.service.ApproveEquipment(ctx, testIncharge, 10)
	require.NoError(t, err)
	assert.False(t, eq.FullyApproved)
	assert.Equal(t, 1, f.notifications.fanouts)

	eq, err = f.service.ApproveEquipment(ctx, testHOD, 10)
	require.NoError(t, err)
	assert.True(t, eq.FullyApproved, "both slots set derives full approval")
	assert.Equal(t, 2, f.notifications.fanouts)
}

func TestReapproveIsQuietNoOp(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())
	ctx := context.Background()

	_, err := f.service.ApproveEquipment(ctx, testIncharge, 10)
	require.NoError(t, err)
	require.Equal(t, 1, f.notifications.fanouts)

	eq, err := f.service.ApproveEquipment(ctx, testIncharge, 10)
	require.NoError(t, err, "re-approval succeeds without error")
	assert.Equal(t, uint64(2), eq.ApprovedByIncharge.Uint64)
	assert.Equal(t, 1, f.notifications.fanouts, "no second notification for a no-op")
	assert.Equal(t, 1, f.equipmentRepo.slotWrites, "no second store write either")
}

func TestApproveEquipmentWrongRole(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())

	_, err := f.service.ApproveEquipment(context.Background(), testAssistant, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	assert.Zero(t, f.equipmentRepo.slotWrites)
}

func TestApproveEquipmentScopeMismatch(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())
	otherIncharge := authz.Actor{ID: 8, Role: authz.RoleLabIncharge, LabID: null.Uint64From(6)}

	_, err := f.service.ApproveEquipment(context.Background(), otherIncharge, 10)
	assert.ErrorIs(t, err, apperrors.ErrScopeMismatch)
}

func TestDeleteLifecyclePurge(t *testing.T) {
	f := newEquipmentFixture(seedApproved())
	ctx := context.Background()

	require.NoError(t, f.service.RequestDelete(ctx, testHOD, 10))
	eq, err := f.service.FindEquipment(ctx, 10)
	require.NoError(t, err)
	assert.True(t, eq.PendingDelete, "record becomes a tombstone, not gone")

	require.NoError(t, f.service.RatifyDelete(ctx, testHOD, 10, true))
	_, err = f.service.FindEquipment(ctx, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "purge removes the row")
}

func TestDeleteLifecycleRestore(t *testing.T) {
	f := newEquipmentFixture(seedApproved())
	ctx := context.Background()

	require.NoError(t, f.service.RequestDelete(ctx, testHOD, 10))
	require.NoError(t, f.service.RatifyDelete(ctx, testHOD, 10, false))

	eq, err := f.service.FindEquipment(ctx, 10)
	require.NoError(t, err)
	assert.False(t, eq.PendingDelete)
	assert.True(t, eq.FullyApproved, "restore keeps the approvals")
}

func TestRatifyDeleteIsHODOnly(t *testing.T) {
	f := newEquipmentFixture(seedApproved())
	ctx := context.Background()

	require.NoError(t, f.service.RequestDelete(ctx, testHOD, 10))
	err := f.service.RatifyDelete(ctx, testIncharge, 10, true)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}

func TestNotificationExcludesActor(t *testing.T) {
	f := newEquipmentFixture(seedUnapproved())

	_, err := f.service.ApproveEquipment(context.Background(), testIncharge, 10)
	require.NoError(t, err)

	for _, row := range f.notifications.rows {
		assert.NotEqual(t, testIncharge.ID, row.RecipientID, "the actor never notifies themselves")
	}
	assert.Len(t, f.notifications.rows, 3, "one row per other recipient, same event")
}
