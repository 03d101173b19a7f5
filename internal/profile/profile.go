package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"ai-travel-planner/internal/shared"
)

// Required profile fields, as reported by MissingFields.
const (
	FieldTravelStyle = "travel_style"
	FieldDailyBudget = "daily_budget"
	FieldInterests   = "interests"
)

// Recognized travel styles.
var travelStyles = map[string]struct{}{
	"budget":      {},
	"backpacking": {},
	"comfort":     {},
	"luxury":      {},
	"adventure":   {},
	"cultural":    {},
	"relaxation":  {},
	"family":      {},
	"solo":        {},
}

// Interests is a list of interest tags stored as JSON in a TEXT column.
type Interests []string

func (i Interests) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	data, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (i *Interests) Scan(value any) error {
	if value == nil {
		*i = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported interests column type %T", value)
	}
	return json.Unmarshal(data, i)
}

// Profile holds one user's travel preferences and generation quota state.
type Profile struct {
	UserID                 string    `db:"user_id"`
	TravelStyle            *string   `db:"travel_style"`
	Interests              Interests `db:"interests"`
	OtherInterests         *string   `db:"other_interests"`
	DailyBudget            *float64  `db:"daily_budget"`
	GenerationCount        int       `db:"generation_count"`
	GenerationLimitResetAt time.Time `db:"generation_limit_reset_at"`
	CreatedAt              time.Time `db:"created_at"`
	UpdatedAt              time.Time `db:"updated_at"`
}

// MissingFields returns the required fields still absent for plan
// generation. Each field is reported independently.
func (p *Profile) MissingFields() []string {
	var missing []string
	if p.TravelStyle == nil || *p.TravelStyle == "" {
		missing = append(missing, FieldTravelStyle)
	}
	if p.DailyBudget == nil || *p.DailyBudget <= 0 {
		missing = append(missing, FieldDailyBudget)
	}
	if len(p.Interests) == 0 && (p.OtherInterests == nil || *p.OtherInterests == "") {
		missing = append(missing, FieldInterests)
	}
	return missing
}

// IsComplete reports whether the profile can drive plan generation.
func (p *Profile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}

// Input carries the fields accepted when upserting a profile.
type Input struct {
	TravelStyle    string   `json:"travel_style"`
	Interests      []string `json:"interests"`
	OtherInterests *string  `json:"other_interests"`
	DailyBudget    *float64 `json:"daily_budget"`
}

// Validate checks the upsert input.
func (in Input) Validate() error {
	if in.TravelStyle == "" {
		return &shared.ValidationError{Field: "travel_style", Reason: "travel style is required"}
	}
	if _, ok := travelStyles[in.TravelStyle]; !ok {
		return &shared.ValidationError{Field: "travel_style", Reason: fmt.Sprintf("unknown travel style %q", in.TravelStyle)}
	}
	if in.DailyBudget != nil && *in.DailyBudget <= 0 {
		return &shared.ValidationError{Field: "daily_budget", Reason: "daily budget must be greater than 0"}
	}
	return nil
}
