package authz

import "github.com/aarondl/null/v8"

// Role names. The workflow engine only consumes this attribute; credential
// issuance is handled elsewhere.
const (
	RoleLabAssistant = "lab_assistant"
	RoleLabIncharge  = "lab_incharge"
	RoleHOD          = "hod"
)

// Actor is the explicit identity context passed into every guard and
// transition call. Guards never read ambient session state.
type Actor struct {
	ID    uint64
	Role  string
	LabID null.Uint64
}

// InLab reports whether the actor is scoped to the given lab. An unset actor
// lab never matches — null is "no lab", not a wildcard.
func (a Actor) InLab(labID uint64) bool {
	return a.LabID.Valid && a.LabID.Uint64 == labID
}
