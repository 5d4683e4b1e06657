package authz

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"

	"lab-inventory-system/internal/entities"
)

func assistant(id, labID uint64) Actor {
	return Actor{ID: id, Role: RoleLabAssistant, LabID: null.Uint64From(labID)}
}

func incharge(id, labID uint64) Actor {
	return Actor{ID: id, Role: RoleLabIncharge, LabID: null.Uint64From(labID)}
}

func hod(id uint64) Actor {
	return Actor{ID: id, Role: RoleHOD}
}

func unapprovedEquipment(labID, createdBy uint64) *entities.Equipment {
	return &entities.Equipment{ID: 10, Name: "Microscope", LabID: labID, CreatedBy: createdBy}
}

func approvedEquipment(labID, createdBy uint64) *entities.Equipment {
	eq := unapprovedEquipment(labID, createdBy)
	eq.ApprovedByIncharge = null.Uint64From(2)
	eq.ApprovedByHOD = null.Uint64From(3)
	eq.RecomputeApproval()
	return eq
}

func TestCanEditEquipment(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		eq    *entities.Equipment
		want  bool
	}{
		{"creator before approval", assistant(1, 5), unapprovedEquipment(5, 1), true},
		{"creator after full approval", assistant(1, 5), approvedEquipment(5, 1), false},
		{"different assistant", assistant(9, 5), unapprovedEquipment(5, 1), false},
		{"creator from another lab", assistant(1, 6), unapprovedEquipment(5, 1), false},
		{"incharge cannot edit", incharge(2, 5), unapprovedEquipment(5, 1), false},
		{"hod cannot edit", hod(3), unapprovedEquipment(5, 1), false},
		{"nil equipment", assistant(1, 5), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditEquipment(tt.actor, tt.eq))
		})
	}

	t.Run("tombstone is not editable", func(t *testing.T) {
		eq := unapprovedEquipment(5, 1)
		eq.PendingDelete = true
		assert.False(t, CanEditEquipment(assistant(1, 5), eq))
	})
}

func TestCanApproveEquipment(t *testing.T) {
	t.Run("incharge may fill own-lab slot", func(t *testing.T) {
		assert.True(t, CanApproveEquipment(incharge(2, 5), unapprovedEquipment(5, 1)))
	})
	t.Run("incharge of another lab may not", func(t *testing.T) {
		assert.False(t, CanApproveEquipment(incharge(2, 6), unapprovedEquipment(5, 1)))
	})
	t.Run("hod may approve regardless of lab", func(t *testing.T) {
		assert.True(t, CanApproveEquipment(hod(3), unapprovedEquipment(5, 1)))
	})
	t.Run("set slot is not offered again", func(t *testing.T) {
		eq := unapprovedEquipment(5, 1)
		eq.ApprovedByIncharge = null.Uint64From(2)
		assert.False(t, CanApproveEquipment(incharge(2, 5), eq))
		assert.True(t, CanApproveEquipment(hod(3), eq))
	})
	t.Run("fully approved record has nothing left", func(t *testing.T) {
		assert.False(t, CanApproveEquipment(hod(3), approvedEquipment(5, 1)))
	})
	t.Run("assistant may never approve", func(t *testing.T) {
		assert.False(t, CanApproveEquipment(assistant(1, 5), unapprovedEquipment(5, 1)))
	})
}

func TestCanDeleteEquipment(t *testing.T) {
	t.Run("hod always", func(t *testing.T) {
		assert.True(t, CanDeleteEquipment(hod(3), approvedEquipment(5, 1)))
	})
	t.Run("incharge only before incharge approval", func(t *testing.T) {
		eq := unapprovedEquipment(5, 1)
		assert.True(t, CanDeleteEquipment(incharge(2, 5), eq))
		eq.ApprovedByIncharge = null.Uint64From(2)
		assert.False(t, CanDeleteEquipment(incharge(2, 5), eq))
	})
	t.Run("creator only before any approval", func(t *testing.T) {
		eq := unapprovedEquipment(5, 1)
		assert.True(t, CanDeleteEquipment(assistant(1, 5), eq))
		eq.ApprovedByHOD = null.Uint64From(3)
		assert.False(t, CanDeleteEquipment(assistant(1, 5), eq))
	})
	t.Run("nil equipment", func(t *testing.T) {
		assert.False(t, CanDeleteEquipment(hod(3), nil))
	})
}

func TestCanRatifyDelete(t *testing.T) {
	eq := approvedEquipment(5, 1)
	assert.False(t, CanRatifyDelete(hod(3), eq), "live record has no pending deletion")

	eq.PendingDelete = true
	assert.True(t, CanRatifyDelete(hod(3), eq))
	assert.False(t, CanRatifyDelete(incharge(2, 5), eq))
	assert.False(t, CanRatifyDelete(assistant(1, 5), eq))
	assert.False(t, CanRatifyDelete(hod(3), nil))
}

func TestCanCreateTransfer(t *testing.T) {
	eq := approvedEquipment(5, 1)

	assert.True(t, CanCreateTransfer(incharge(2, 5), eq, 5))
	assert.False(t, CanCreateTransfer(incharge(2, 6), eq, 5), "wrong lab scope")
	assert.False(t, CanCreateTransfer(hod(3), eq, 5), "hod does not move equipment")
	assert.False(t, CanCreateTransfer(incharge(2, 5), unapprovedEquipment(5, 1), 5), "unapproved equipment is immobile")

	moved := approvedEquipment(6, 1)
	assert.False(t, CanCreateTransfer(incharge(2, 5), moved, 5), "record no longer allocated to source lab")
}

func TestCanReceiveTransfer(t *testing.T) {
	pending := &entities.Transfer{ID: 7, FromLabID: 5, ToLabID: 6, InitiatedBy: 2, Status: entities.TransferStatusPending}

	assert.True(t, CanReceiveTransfer(incharge(4, 6), pending))
	assert.False(t, CanReceiveTransfer(incharge(2, 5), pending), "source incharge cannot receive")
	assert.False(t, CanReceiveTransfer(hod(3), pending))

	received := *pending
	received.Status = entities.TransferStatusReceived
	assert.False(t, CanReceiveTransfer(incharge(4, 6), &received))
	assert.False(t, CanReceiveTransfer(incharge(4, 6), nil))
}

func TestCanDeleteTransfer(t *testing.T) {
	pending := &entities.Transfer{ID: 7, FromLabID: 5, ToLabID: 6, InitiatedBy: 2, Status: entities.TransferStatusPending}

	assert.True(t, CanDeleteTransfer(incharge(2, 5), pending))
	assert.False(t, CanDeleteTransfer(incharge(4, 6), pending), "only the initiator")

	received := *pending
	received.Status = entities.TransferStatusReceived
	assert.False(t, CanDeleteTransfer(incharge(2, 5), &received))
}

func TestCanReportIssue(t *testing.T) {
	assert.True(t, CanReportIssue(assistant(1, 5), approvedEquipment(5, 1)))
	assert.True(t, CanReportIssue(hod(3), approvedEquipment(5, 1)))
	assert.False(t, CanReportIssue(assistant(1, 5), unapprovedEquipment(5, 1)))
	assert.False(t, CanReportIssue(Actor{}, approvedEquipment(5, 1)), "anonymous actor")
	assert.False(t, CanReportIssue(assistant(1, 5), nil))
}

func TestCanResolveIssue(t *testing.T) {
	eq := approvedEquipment(5, 1)
	open := &entities.Issue{ID: 9, EquipmentID: eq.ID, Status: entities.IssueStatusOpen}

	assert.True(t, CanResolveIssue(assistant(1, 5), open, eq))
	assert.False(t, CanResolveIssue(assistant(1, 6), open, eq), "wrong lab")
	assert.False(t, CanResolveIssue(incharge(2, 5), open, eq))

	resolved := *open
	resolved.Status = entities.IssueStatusResolved
	assert.False(t, CanResolveIssue(assistant(1, 5), &resolved, eq))
	assert.False(t, CanResolveIssue(assistant(1, 5), nil, eq))
	assert.False(t, CanResolveIssue(assistant(1, 5), open, nil))
}

// An issue follows its equipment: after a transfer the destination lab's
// assistant resolves it, not the lab where it was reported.
func TestIssueFollowsEquipmentAcrossTransfer(t *testing.T) {
	eq := approvedEquipment(5, 1)
	open := &entities.Issue{ID: 9, EquipmentID: eq.ID, Status: entities.IssueStatusOpen}
	assert.True(t, CanResolveIssue(assistant(1, 5), open, eq))

	eq.LabID = 6
	assert.False(t, CanResolveIssue(assistant(1, 5), open, eq))
	assert.True(t, CanResolveIssue(assistant(8, 6), open, eq))
}

func TestEvaluateClosedSet(t *testing.T) {
	eq := unapprovedEquipment(5, 1)
	target := Target{Equipment: eq, FromLabID: eq.LabID}

	assert.True(t, Evaluate(GuardEditEquipment, assistant(1, 5), target))
	assert.False(t, Evaluate("equipment:unknown_action", hod(3), target), "unknown guard name answers false")
	assert.False(t, Evaluate(GuardReceiveTransfer, incharge(2, 5), Target{}), "missing target entity answers false")
}

func TestActorInLab(t *testing.T) {
	assert.False(t, Actor{ID: 3, Role: RoleHOD}.InLab(5), "unset lab never matches")
	assert.True(t, incharge(2, 5).InLab(5))
	assert.False(t, incharge(2, 5).InLab(6))
}
