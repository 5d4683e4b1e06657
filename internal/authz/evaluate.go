package authz

import "lab-inventory-system/internal/entities"

// Guard names exposed to the presentation layer. The set is closed: the UI
// asks by name which actions to offer, and the services enforce the same
// predicates before any transition.
const (
	GuardEditEquipment    = "equipment:edit"
	GuardApproveEquipment = "equipment:approve"
	GuardDeleteEquipment  = "equipment:delete"
	GuardRatifyDelete     = "equipment:ratify_delete"
	GuardCreateTransfer   = "transfer:create"
	GuardReceiveTransfer  = "transfer:receive"
	GuardDeleteTransfer   = "transfer:delete"
	GuardReportIssue      = "issue:report"
	GuardResolveIssue     = "issue:resolve"
)

// Target bundles the entities a guard may inspect. Only the fields relevant
// to the named guard need to be set.
type Target struct {
	Equipment *entities.Equipment
	Transfer  *entities.Transfer
	Issue     *entities.Issue
	FromLabID uint64
}

var guards = map[string]func(Actor, Target) bool{
	GuardEditEquipment: func(a Actor, t Target) bool {
		return CanEditEquipment(a, t.Equipment)
	},
	GuardApproveEquipment: func(a Actor, t Target) bool {
		return CanApproveEquipment(a, t.Equipment)
	},
	GuardDeleteEquipment: func(a Actor, t Target) bool {
		return CanDeleteEquipment(a, t.Equipment)
	},
	GuardRatifyDelete: func(a Actor, t Target) bool {
		return CanRatifyDelete(a, t.Equipment)
	},
	GuardCreateTransfer: func(a Actor, t Target) bool {
		return CanCreateTransfer(a, t.Equipment, t.FromLabID)
	},
	GuardReceiveTransfer: func(a Actor, t Target) bool {
		return CanReceiveTransfer(a, t.Transfer)
	},
	GuardDeleteTransfer: func(a Actor, t Target) bool {
		return CanDeleteTransfer(a, t.Transfer)
	},
	GuardReportIssue: func(a Actor, t Target) bool {
		return CanReportIssue(a, t.Equipment)
	},
	GuardResolveIssue: func(a Actor, t Target) bool {
		return CanResolveIssue(a, t.Issue, t.Equipment)
	},
}

// Evaluate runs the named guard. Unknown names evaluate to false.
func Evaluate(name string, actor Actor, target Target) bool {
	guard, ok := guards[name]
	if !ok {
		return false
	}
	return guard(actor, target)
}
