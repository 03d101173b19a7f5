package note

import (
	"fmt"
	"time"

	"ai-travel-planner/internal/shared"
)

const (
	maxDestinationLength = 255
	maxNotesLength       = 10000
	maxTripDays          = 14

	dateLayout = "2006-01-02"
)

// Note represents a trip intent owned by one user.
type Note struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	Destination     string    `db:"destination"`
	StartDate       time.Time `db:"start_date"`
	EndDate         time.Time `db:"end_date"`
	TotalBudget     *float64  `db:"total_budget"`
	AdditionalNotes *string   `db:"additional_notes"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Input carries the fields accepted when creating or updating a note.
type Input struct {
	Destination     string   `json:"destination"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	TotalBudget     *float64 `json:"total_budget"`
	AdditionalNotes *string  `json:"additional_notes"`
}

// Validate checks the input against the note business rules and returns
// the parsed trip dates.
func (in Input) Validate() (start, end time.Time, err error) {
	if in.Destination == "" {
		return start, end, &shared.ValidationError{Field: "destination", Reason: "destination is required"}
	}
	if len(in.Destination) > maxDestinationLength {
		return start, end, &shared.ValidationError{
			Field:  "destination",
			Reason: fmt.Sprintf("destination cannot exceed %d characters", maxDestinationLength),
		}
	}

	start, err = time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return start, end, &shared.ValidationError{Field: "start_date", Reason: "invalid start date format (expected YYYY-MM-DD)"}
	}
	end, err = time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return start, end, &shared.ValidationError{Field: "end_date", Reason: "invalid end date format (expected YYYY-MM-DD)"}
	}
	if end.Before(start) {
		return start, end, &shared.ValidationError{Field: "end_date", Reason: "end date must be after or equal to start date"}
	}
	if int(end.Sub(start).Hours()/24) > maxTripDays {
		return start, end, &shared.ValidationError{
			Field:  "end_date",
			Reason: fmt.Sprintf("trip duration cannot exceed %d days", maxTripDays),
		}
	}

	if in.TotalBudget != nil && *in.TotalBudget <= 0 {
		return start, end, &shared.ValidationError{Field: "total_budget", Reason: "total budget must be greater than 0"}
	}
	if in.AdditionalNotes != nil && len(*in.AdditionalNotes) > maxNotesLength {
		return start, end, &shared.ValidationError{
			Field:  "additional_notes",
			Reason: fmt.Sprintf("additional notes cannot exceed %d characters", maxNotesLength),
		}
	}

	return start, end, nil
}

// Sortable fields for note listings.
var sortFields = map[string]string{
	"created_at":  "created_at",
	"start_date":  "start_date",
	"destination": "destination",
}

// ListParams is a validated set of listing options.
type ListParams struct {
	SortField string
	SortDir   string
	Limit     int
	Offset    int
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ParseListParams validates a "field:direction" sort expression plus
// paging bounds. Zero limit selects the default.
func ParseListParams(sort string, limit, offset int) (ListParams, error) {
	p := ListParams{SortField: "created_at", SortDir: "DESC", Limit: defaultListLimit}

	if sort != "" {
		field, dir, ok := splitSort(sort)
		if !ok {
			return p, &shared.ValidationError{Field: "sort", Reason: "expected format field:direction"}
		}
		column, known := sortFields[field]
		if !known {
			return p, &shared.ValidationError{Field: "sort", Reason: fmt.Sprintf("unsupported sort field %q", field)}
		}
		switch dir {
		case "asc":
			p.SortDir = "ASC"
		case "desc":
			p.SortDir = "DESC"
		default:
			return p, &shared.ValidationError{Field: "sort", Reason: fmt.Sprintf("unsupported sort direction %q", dir)}
		}
		p.SortField = column
	}

	if limit < 0 || limit > maxListLimit {
		return p, &shared.ValidationError{Field: "limit", Reason: fmt.Sprintf("limit must be between 0 and %d", maxListLimit)}
	}
	if limit > 0 {
		p.Limit = limit
	}
	if offset < 0 {
		return p, &shared.ValidationError{Field: "offset", Reason: "offset cannot be negative"}
	}
	p.Offset = offset

	return p, nil
}

func splitSort(s string) (field, dir string, ok bool) {
	for i := range s {
		if s[i] == ':' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
