package authz

import "lab-inventory-system/internal/entities"

// Guard predicates are pure and total: they never touch storage, never
// panic, and a nil entity or unset actor lab always evaluates to false.
// Both the state machine and the presentation layer (deciding which actions
// to offer) consume the same closed set.

// CanEditEquipment: only the creating lab assistant may edit, within their
// own lab, and only while the record has not been fully approved.
func CanEditEquipment(actor Actor, eq *entities.Equipment) bool {
	if eq == nil || eq.PendingDelete {
		return false
	}
	return actor.Role == RoleLabAssistant &&
		actor.ID == eq.CreatedBy &&
		actor.InLab(eq.LabID) &&
		!eq.FullyApproved
}

// CanApproveEquipment: the HOD may fill the HOD slot anywhere; an incharge
// may fill the incharge slot for their own lab. A set slot cannot be offered
// again.
func CanApproveEquipment(actor Actor, eq *entities.Equipment) bool {
	if eq == nil || eq.PendingDelete || eq.FullyApproved {
		return false
	}
	switch actor.Role {
	case RoleHOD:
		return !eq.ApprovedByHOD.Valid
	case RoleLabIncharge:
		return !eq.ApprovedByIncharge.Valid && actor.InLab(eq.LabID)
	}
	return false
}

// CanDeleteEquipment: the HOD always; an incharge only before incharge
// approval and within their lab; the creating assistant only before any
// approval and within their lab.
func CanDeleteEquipment(actor Actor, eq *entities.Equipment) bool {
	if eq == nil {
		return false
	}
	switch actor.Role {
	case RoleHOD:
		return true
	case RoleLabIncharge:
		return !eq.ApprovedByIncharge.Valid && actor.InLab(eq.LabID)
	case RoleLabAssistant:
		return actor.ID == eq.CreatedBy &&
			!eq.ApprovedByIncharge.Valid && !eq.ApprovedByHOD.Valid &&
			actor.InLab(eq.LabID)
	}
	return false
}

// CanRatifyDelete: purging or restoring a tombstone is HOD-only.
func CanRatifyDelete(actor Actor, eq *entities.Equipment) bool {
	return eq != nil && eq.PendingDelete && actor.Role == RoleHOD
}

// CanCreateTransfer: an incharge of the source lab, for equipment that is
// fully approved and currently allocated there.
func CanCreateTransfer(actor Actor, eq *entities.Equipment, fromLabID uint64) bool {
	if eq == nil || eq.PendingDelete {
		return false
	}
	return actor.Role == RoleLabIncharge &&
		actor.InLab(fromLabID) &&
		eq.FullyApproved &&
		eq.LabID == fromLabID
}

// CanReceiveTransfer: an incharge of the destination lab, while the transfer
// is still pending.
func CanReceiveTransfer(actor Actor, tr *entities.Transfer) bool {
	if tr == nil {
		return false
	}
	return actor.Role == RoleLabIncharge &&
		actor.InLab(tr.ToLabID) &&
		tr.Status == entities.TransferStatusPending
}

// CanDeleteTransfer: the initiating incharge may withdraw a transfer that
// has not been received yet.
func CanDeleteTransfer(actor Actor, tr *entities.Transfer) bool {
	if tr == nil {
		return false
	}
	return actor.Role == RoleLabIncharge &&
		actor.ID == tr.InitiatedBy &&
		tr.Status == entities.TransferStatusPending
}

// CanReportIssue: any authenticated role, against approved equipment.
func CanReportIssue(actor Actor, eq *entities.Equipment) bool {
	if eq == nil || eq.PendingDelete {
		return false
	}
	return actor.ID != 0 && eq.FullyApproved
}

// CanResolveIssue: a lab assistant scoped to the equipment's current lab,
// while the issue is open. The issue follows the equipment, so a relocated
// record is resolvable at its new lab.
func CanResolveIssue(actor Actor, is *entities.Issue, eq *entities.Equipment) bool {
	if is == nil || eq == nil {
		return false
	}
	return actor.Role == RoleLabAssistant &&
		actor.InLab(eq.LabID) &&
		is.Status == entities.IssueStatusOpen
}
