package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/shared"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    []string
	}{
		{
			name:    "empty_profile",
			profile: Profile{},
			want:    []string{FieldTravelStyle, FieldDailyBudget, FieldInterests},
		},
		{
			name:    "missing_travel_style_only",
			profile: Profile{DailyBudget: numPtr(100), Interests: Interests{"food"}},
			want:    []string{FieldTravelStyle},
		},
		{
			name:    "budget_added_interests_still_missing",
			profile: Profile{TravelStyle: strPtr("cultural"), DailyBudget: numPtr(100)},
			want:    []string{FieldInterests},
		},
		{
			name:    "other_interests_satisfies_interests",
			profile: Profile{TravelStyle: strPtr("cultural"), DailyBudget: numPtr(100), OtherInterests: strPtr("street art")},
			want:    nil,
		},
		{
			name:    "zero_budget_counts_as_missing",
			profile: Profile{TravelStyle: strPtr("cultural"), DailyBudget: numPtr(0), Interests: Interests{"food"}},
			want:    []string{FieldDailyBudget},
		},
		{
			name: "complete",
			profile: Profile{
				TravelStyle: strPtr("cultural"),
				DailyBudget: numPtr(100),
				Interests:   Interests{"food", "history"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.MissingFields())
			assert.Equal(t, len(tt.want) == 0, tt.profile.IsComplete())
		})
	}
}

func TestInputValidate(t *testing.T) {
	err := Input{TravelStyle: "cultural", DailyBudget: numPtr(50)}.Validate()
	require.NoError(t, err)

	err = Input{}.Validate()
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "travel_style", verr.Field)

	err = Input{TravelStyle: "extravagant"}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "travel_style", verr.Field)

	err = Input{TravelStyle: "cultural", DailyBudget: numPtr(-5)}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "daily_budget", verr.Field)
}

func TestInterestsRoundTrip(t *testing.T) {
	in := Interests{"food", "history"}

	v, err := in.Value()
	require.NoError(t, err)

	var out Interests
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	var empty Interests
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
