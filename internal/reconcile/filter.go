package reconcile

import (
	"strings"
	"time"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/pkg/types"
)

// Table names of the mutation feeds clients can watch.
const (
	TableEquipments = "equipments"
	TableTransfers  = "transfers"
	TableIssues     = "issues"
)

// fields is the filterable projection of one pushed row. The feed carries
// raw table rows, so only columns present on the row itself are matchable;
// joined display data is left to the refetch.
type fields struct {
	search  []string
	status  string
	labIDs  []uint64
	typeID  *uint64
	created time.Time
}

func fieldsOf(row interface{}) (fields, bool) {
	switch v := row.(type) {
	case *entities.Equipment:
		status := "pending"
		if v.FullyApproved {
			status = "approved"
		}
		typeID := v.EquipmentTypeID
		return fields{
			search:  []string{v.Name},
			status:  status,
			labIDs:  []uint64{v.LabID},
			typeID:  &typeID,
			created: v.CreatedAt,
		}, true
	case *entities.Transfer:
		return fields{
			status:  v.Status,
			labIDs:  []uint64{v.FromLabID, v.ToLabID},
			created: v.CreatedAt,
		}, true
	case *entities.Issue:
		// An issue row has no lab column of its own; the lab lives on the
		// joined equipment. A nil slice marks the lab as unknown so lab
		// filters fall back to matching instead of hiding the row.
		var labIDs []uint64
		if v.Equipment != nil {
			labIDs = []uint64{v.Equipment.LabID}
		}
		return fields{
			search:  []string{v.Description},
			status:  v.Status,
			labIDs:  labIDs,
			created: v.CreatedAt,
		}, true
	}
	return fields{}, false
}

// Matches evaluates the active filter against the incoming record — never
// against the previously cached version. A row the engine cannot project is
// treated as matching: a spurious refresh is cheap, a missed one is a stale
// view.
func Matches(f types.Filter, row interface{}) bool {
	if f.IsZero() {
		return true
	}
	fl, ok := fieldsOf(row)
	if !ok {
		return true
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		found := false
		for _, s := range fl.search {
			if strings.Contains(strings.ToLower(s), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Status != "" && f.Status != fl.status {
		return false
	}

	// A row whose lab cannot be determined (nil labIDs) passes the lab
	// predicate, same as an unprojectable row passes everything.
	if f.LabID != nil && fl.labIDs != nil {
		found := false
		for _, id := range fl.labIDs {
			if id == *f.LabID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.TypeID != nil {
		if fl.typeID == nil || *fl.typeID != *f.TypeID {
			return false
		}
	}

	// Date range is inclusive on both ends.
	if f.DateFrom != nil && fl.created.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && fl.created.After(*f.DateTo) {
		return false
	}

	return true
}
