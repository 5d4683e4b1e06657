package utils

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"lab-inventory-system/pkg/types"
)

// ParseFilter reads the listing predicate from query parameters:
// ?search=...&status=...&lab_id=...&type_id=...&date_from=...&date_to=...
// &limit=...&offset=...
func ParseFilter(c echo.Context) types.Filter {
	filter := types.Filter{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
		Limit:  parseUint(c.QueryParam("limit"), 20),
		Offset: parseUint(c.QueryParam("offset"), 0),
	}

	if v := c.QueryParam("lab_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.LabID = &id
		}
	}
	if v := c.QueryParam("type_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.TypeID = &id
		}
	}
	if v := c.QueryParam("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.QueryParam("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive upper bound: extend to the end of the day.
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.DateTo = &end
		}
	}

	return filter
}

func parseUint(s string, fallback uint64) uint64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
