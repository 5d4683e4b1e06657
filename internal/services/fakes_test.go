package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aarondl/null/v8"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/types"
)

// In-memory repository fakes. They reproduce the conditional-write
// semantics of the SQL layer (slot writes only when unset, status writes
// only from the prior status) so the services see the same changed/no-op
// answers as against the real store.

type fakeEquipmentRepo struct {
	mu         sync.Mutex
	byID       map[uint64]*entities.Equipment
	nextID     uint64
	slotWrites int
}

func newFakeEquipmentRepo(seed ...*entities.Equipment) *fakeEquipmentRepo {
	r := &fakeEquipmentRepo{byID: make(map[uint64]*entities.Equipment), nextID: 1}
	for _, eq := range seed {
		cp := *eq
		r.byID[cp.ID] = &cp
		if cp.ID >= r.nextID {
			r.nextID = cp.ID + 1
		}
	}
	return r
}

func (r *fakeEquipmentRepo) GetEquipments(_ context.Context, _ types.Filter) ([]entities.Equipment, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entities.Equipment
	for _, eq := range r.byID {
		result = append(result, *eq)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeEquipmentRepo) FindEquipment(_ context.Context, id uint64) (*entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *eq
	return &cp, nil
}

func (r *fakeEquipmentRepo) CreateEquipment(_ context.Context, eq *entities.Equipment) (*entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *eq
	cp.ID = r.nextID
	r.nextID++
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEquipmentRepo) UpdateDetails(_ context.Context, eq *entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[eq.ID]
	if !ok || stored.FullyApproved || stored.PendingDelete {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"equipment is no longer editable")
	}
	stored.Name = eq.Name
	stored.EquipmentTypeID = eq.EquipmentTypeID
	stored.Rate = eq.Rate
	stored.Quantity = eq.Quantity
	return nil
}

func (r *fakeEquipmentRepo) SetInchargeApproval(_ context.Context, id, approverID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.byID[id]
	if !ok || eq.ApprovedByIncharge.Valid {
		return false, nil
	}
	r.slotWrites++
	eq.ApprovedByIncharge = null.Uint64From(approverID)
	eq.RecomputeApproval()
	return true, nil
}

func (r *fakeEquipmentRepo) SetHODApproval(_ context.Context, id, approverID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.byID[id]
	if !ok || eq.ApprovedByHOD.Valid {
		return false, nil
	}
	r.slotWrites++
	eq.ApprovedByHOD = null.Uint64From(approverID)
	eq.RecomputeApproval()
	return true, nil
}

func (r *fakeEquipmentRepo) MarkPendingDelete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	eq.PendingDelete = true
	return nil
}

func (r *fakeEquipmentRepo) RestoreEquipment(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	eq.PendingDelete = false
	return nil
}

func (r *fakeEquipmentRepo) PurgeEquipment(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	byID      map[uint64]*entities.Transfer
	nextID    uint64
	equipment *fakeEquipmentRepo
}

func newFakeTransferRepo(equipment *fakeEquipmentRepo, seed ...*entities.Transfer) *fakeTransferRepo {
	r := &fakeTransferRepo{byID: make(map[uint64]*entities.Transfer), nextID: 1, equipment: equipment}
	for _, tr := range seed {
		cp := *tr
		r.byID[cp.ID] = &cp
		if cp.ID >= r.nextID {
			r.nextID = cp.ID + 1
		}
	}
	return r
}

func (r *fakeTransferRepo) GetTransfers(_ context.Context, _ types.Filter) ([]entities.Transfer, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entities.Transfer
	for _, tr := range r.byID {
		result = append(result, *tr)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeTransferRepo) FindTransfer(_ context.Context, id uint64) (*entities.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *tr
	return &cp, nil
}

func (r *fakeTransferRepo) CreateWithLabMove(ctx context.Context, tr *entities.Transfer) (*entities.Transfer, *entities.Equipment, error) {
	r.equipment.mu.Lock()
	eq, ok := r.equipment.byID[tr.EquipmentID]
	if !ok || eq.LabID != tr.FromLabID || !eq.FullyApproved || eq.PendingDelete {
		r.equipment.mu.Unlock()
		return nil, nil, apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"equipment is not transferable from this lab")
	}
	eq.LabID = tr.ToLabID
	moved := *eq
	r.equipment.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tr
	cp.ID = r.nextID
	r.nextID++
	cp.Status = entities.TransferStatusPending
	r.byID[cp.ID] = &cp
	out := cp
	return &out, &moved, nil
}

func (r *fakeTransferRepo) MarkReceived(_ context.Context, id, receiverID uint64, receivedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.byID[id]
	if !ok || tr.Status != entities.TransferStatusPending {
		return false, nil
	}
	tr.Status = entities.TransferStatusReceived
	tr.ReceivedBy = null.Uint64From(receiverID)
	tr.ReceivedAt = null.TimeFrom(receivedAt)
	return true, nil
}

func (r *fakeTransferRepo) DeletePending(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.byID[id]
	if !ok || tr.Status != entities.TransferStatusPending {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"only a pending transfer can be deleted")
	}
	delete(r.byID, id)
	return nil
}

type fakeIssueRepo struct {
	mu     sync.Mutex
	byID   map[uint64]*entities.Issue
	nextID uint64
}

func newFakeIssueRepo(seed ...*entities.Issue) *fakeIssueRepo {
	r := &fakeIssueRepo{byID: make(map[uint64]*entities.Issue), nextID: 1}
	for _, is := range seed {
		cp := *is
		r.byID[cp.ID] = &cp
		if cp.ID >= r.nextID {
			r.nextID = cp.ID + 1
		}
	}
	return r
}

func (r *fakeIssueRepo) GetIssues(_ context.Context, _ types.Filter) ([]entities.Issue, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entities.Issue
	for _, is := range r.byID {
		result = append(result, *is)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeIssueRepo) FindIssue(_ context.Context, id uint64) (*entities.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	is, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *is
	return &cp, nil
}

func (r *fakeIssueRepo) CreateIssue(_ context.Context, is *entities.Issue) (*entities.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *is
	cp.ID = r.nextID
	r.nextID++
	cp.Status = entities.IssueStatusOpen
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeIssueRepo) MarkResolved(_ context.Context, id, resolverID uint64, remark null.String, cost null.Float64, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	is, ok := r.byID[id]
	if !ok || is.Status != entities.IssueStatusOpen {
		return false, nil
	}
	is.Status = entities.IssueStatusResolved
	is.Remark = remark
	is.RepairCost = cost
	is.ResolvedBy = null.Uint64From(resolverID)
	is.ResolvedAt = null.TimeFrom(resolvedAt)
	return true, nil
}

// fakeNotificationRepo mimics the stored-procedure fan-out: one row per
// recipient for the fixed recipient set, atomically.
type fakeNotificationRepo struct {
	mu         sync.Mutex
	recipients []uint64
	rows       []entities.Notification
	fanouts    int
	nextID     uint64
}

func newFakeNotificationRepo(recipients ...uint64) *fakeNotificationRepo {
	return &fakeNotificationRepo{recipients: recipients, nextID: 1}
}

func (r *fakeNotificationRepo) Fanout(_ context.Context, n *entities.Notification, targetID *uint64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fanouts++

	recipients := r.recipients
	if targetID != nil {
		recipients = []uint64{*targetID}
	}

	inserted := 0
	for _, recipient := range recipients {
		if recipient == n.ActorID {
			continue
		}
		row := *n
		row.ID = r.nextID
		r.nextID++
		row.RecipientID = recipient
		r.rows = append(r.rows, row)
		inserted++
	}
	return inserted, nil
}

func (r *fakeNotificationRepo) ListByEvent(_ context.Context, eventID string) ([]entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entities.Notification
	for _, row := range r.rows {
		if row.EventID == eventID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID uint64, _, _ uint64) ([]entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entities.Notification
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, recipientID uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count uint64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].RecipientID == recipientID {
			r.rows[i].IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].RecipientID == recipientID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

type fakeCacheRepo struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
	dels   int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string)}
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	switch v := value.(type) {
	case string:
		r.values[key] = v
	case uint64:
		r.values[key] = strconv.FormatUint(v, 10)
	default:
		r.values[key] = ""
	}
	return nil
}

func (r *fakeCacheRepo) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dels++
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}
