package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/shared"
)

func validInput() Input {
	budget := 1200.0
	return Input{
		Destination: "Lisbon",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-05",
		TotalBudget: &budget,
	}
}

func TestInputValidate_Success(t *testing.T) {
	start, end, err := validInput().Validate()

	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-06-05", end.Format("2006-01-02"))
}

func TestInputValidate_FieldErrors(t *testing.T) {
	longText := make([]byte, maxNotesLength+1)
	for i := range longText {
		longText[i] = 'x'
	}
	longNotes := string(longText)
	zeroBudget := 0.0

	tests := []struct {
		name      string
		mutate    func(*Input)
		wantField string
	}{
		{"missing_destination", func(in *Input) { in.Destination = "" }, "destination"},
		{"destination_too_long", func(in *Input) {
			in.Destination = string(make([]byte, maxDestinationLength+1))
		}, "destination"},
		{"bad_start_date", func(in *Input) { in.StartDate = "June 1st" }, "start_date"},
		{"bad_end_date", func(in *Input) { in.EndDate = "2025-13-40" }, "end_date"},
		{"end_before_start", func(in *Input) { in.EndDate = "2025-05-30" }, "end_date"},
		{"trip_too_long", func(in *Input) { in.EndDate = "2025-06-20" }, "end_date"},
		{"zero_budget", func(in *Input) { in.TotalBudget = &zeroBudget }, "total_budget"},
		{"notes_too_long", func(in *Input) { in.AdditionalNotes = &longNotes }, "additional_notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, _, err := in.Validate()

			require.Error(t, err)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestInputValidate_FourteenDayTripAllowed(t *testing.T) {
	in := validInput()
	in.EndDate = "2025-06-15" // exactly 14 days after start

	_, _, err := in.Validate()
	require.NoError(t, err)
}

func TestParseListParams_Defaults(t *testing.T) {
	p, err := ParseListParams("", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, "created_at", p.SortField)
	assert.Equal(t, "DESC", p.SortDir)
	assert.Equal(t, defaultListLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseListParams_SortWhitelist(t *testing.T) {
	p, err := ParseListParams("destination:asc", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "destination", p.SortField)
	assert.Equal(t, "ASC", p.SortDir)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)

	_, err = ParseListParams("user_id:asc", 0, 0)
	require.Error(t, err)

	_, err = ParseListParams("created_at:sideways", 0, 0)
	require.Error(t, err)

	_, err = ParseListParams("created_at", 0, 0)
	require.Error(t, err)
}

func TestParseListParams_Bounds(t *testing.T) {
	_, err := ParseListParams("", maxListLimit+1, 0)
	require.Error(t, err)

	_, err = ParseListParams("", 0, -1)
	require.Error(t, err)
}
