// Package workflow encodes the legal states and transitions for equipment
// records, inter-lab transfers and issue reports. Every function is pure
// compute over the entity passed in: callers persist the result first and
// discard the in-memory copy if the store write fails, so the machine never
// advances past the store.
package workflow

import (
	"time"

	"github.com/aarondl/null/v8"

	"lab-inventory-system/internal/authz"
	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
)

// Transition kinds accepted by the generic transition endpoint.
const (
	TransitionApproveIncharge = "approve_incharge"
	TransitionApproveHOD      = "approve_hod"
	TransitionMarkReceived    = "mark_received"
	TransitionResolve         = "resolve"
)

// RecordIncharge fills the incharge approval slot. Re-approving an already
// set slot is a no-op (changed=false), not an error, so duplicate client
// requests stay harmless. The derived flag is recomputed after the write.
func RecordIncharge(eq *entities.Equipment, actor authz.Actor) (changed bool, err error) {
	if eq.ApprovedByIncharge.Valid {
		return false, nil
	}
	if actor.Role != authz.RoleLabIncharge {
		return false, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only a lab incharge can record the incharge approval")
	}
	if !actor.InLab(eq.LabID) {
		return false, apperrors.NewRejection(apperrors.ErrScopeMismatch,
			"actor is not the incharge of the equipment's lab")
	}
	eq.ApprovedByIncharge = null.Uint64From(actor.ID)
	eq.RecomputeApproval()
	return true, nil
}

// RecordHOD fills the HOD approval slot; order-independent with respect to
// the incharge slot and idempotent the same way.
func RecordHOD(eq *entities.Equipment, actor authz.Actor) (changed bool, err error) {
	if eq.ApprovedByHOD.Valid {
		return false, nil
	}
	if actor.Role != authz.RoleHOD {
		return false, apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only the head of department can record the HOD approval")
	}
	eq.ApprovedByHOD = null.Uint64From(actor.ID)
	eq.RecomputeApproval()
	return true, nil
}

// MarkReceived transitions a transfer to received exactly once. A second
// call is rejected, not silently ignored: an explicit error is what
// separates a genuine double-submit bug from an idempotent retry.
func MarkReceived(tr *entities.Transfer, actor authz.Actor, now time.Time) error {
	if tr.Status == entities.TransferStatusReceived {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"transfer has already been received")
	}
	if actor.Role != authz.RoleLabIncharge {
		return apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only a lab incharge can receive a transfer")
	}
	if !actor.InLab(tr.ToLabID) {
		return apperrors.NewRejection(apperrors.ErrScopeMismatch,
			"actor is not the incharge of the destination lab")
	}
	tr.Status = entities.TransferStatusReceived
	tr.ReceivedBy = null.Uint64From(actor.ID)
	tr.ReceivedAt = null.TimeFrom(now)
	return nil
}

// Resolve transitions an issue to resolved exactly once, stamping the
// resolver and recording the optional remark and repair cost permanently.
// The equipment argument carries the current lab for the scope check.
func Resolve(is *entities.Issue, eq *entities.Equipment, actor authz.Actor, remark null.String, cost null.Float64, now time.Time) error {
	if is.Status == entities.IssueStatusResolved {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"issue has already been resolved")
	}
	if actor.Role != authz.RoleLabAssistant {
		return apperrors.NewRejection(apperrors.ErrNotAuthorized,
			"only a lab assistant can resolve an issue")
	}
	if !actor.InLab(eq.LabID) {
		return apperrors.NewRejection(apperrors.ErrScopeMismatch,
			"actor is not an assistant of the equipment's lab")
	}
	is.Status = entities.IssueStatusResolved
	is.Remark = remark
	is.RepairCost = cost
	is.ResolvedBy = null.Uint64From(actor.ID)
	is.ResolvedAt = null.TimeFrom(now)
	return nil
}
