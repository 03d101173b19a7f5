package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PromptVersion tags every generated plan with the template revision that
// produced it, so later template migrations stay distinguishable in
// stored data.
const PromptVersion = "v1"

// maxPromptLength guards against unbounded provider cost and latency.
const maxPromptLength = 8000

const promptDateLayout = "January 2, 2006"

// PromptData is the structured trip and profile input for one prompt.
type PromptData struct {
	Destination     string
	StartDate       time.Time
	EndDate         time.Time
	TotalBudget     *float64
	DailyBudget     *float64
	TravelStyle     string
	Interests       []string
	OtherInterests  *string
	AdditionalNotes *string
}

// PromptTooLongError reports a rendered prompt over the length ceiling.
// Not retryable: the same input always produces the same prompt.
type PromptTooLongError struct {
	Length int
}

func (e *PromptTooLongError) Error() string {
	return fmt.Sprintf("prompt exceeds maximum length of %d characters (%d characters)", maxPromptLength, e.Length)
}

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// sanitizeInput strips characters commonly used for prompt injection and
// collapses excessive newlines. A soft cosmetic defense, not a security
// boundary.
func sanitizeInput(input string) string {
	s := strings.NewReplacer("<", "", ">", "", "{", "", "}", "").Replace(input)
	s = collapseNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// tripDuration counts days inclusively: both the start and end day count.
func tripDuration(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	if end.Sub(start)%(24*time.Hour) != 0 {
		days++
	}
	return days + 1
}

func formatMoney(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
}

// BuildPrompt renders the instruction block for one generation attempt.
// Output is deterministic for identical input.
func BuildPrompt(data PromptData) (string, error) {
	if data.Destination == "" || data.TravelStyle == "" || data.StartDate.IsZero() || data.EndDate.IsZero() {
		return "", fmt.Errorf("missing required fields for prompt construction")
	}

	duration := tripDuration(data.StartDate, data.EndDate)

	interestsList := append([]string{}, data.Interests...)
	if data.OtherInterests != nil && *data.OtherInterests != "" {
		interestsList = append(interestsList, sanitizeInput(*data.OtherInterests))
	}
	interestsText := "general tourism"
	if len(interestsList) > 0 {
		interestsText = strings.Join(interestsList, ", ")
	}

	budgetText := ""
	switch {
	case data.TotalBudget != nil:
		budgetText = "Total budget: " + formatMoney(*data.TotalBudget)
		if data.DailyBudget != nil {
			budgetText += fmt.Sprintf(" (approximately %s per day)", formatMoney(*data.DailyBudget))
		}
	case data.DailyBudget != nil:
		budgetText = "Daily budget: " + formatMoney(*data.DailyBudget)
	}

	var b strings.Builder
	b.WriteString("You are a professional travel planner. Create a detailed, personalized travel itinerary based on the following information:\n\n")
	fmt.Fprintf(&b, "**Destination:** %s\n", sanitizeInput(data.Destination))
	fmt.Fprintf(&b, "**Travel Dates:** %s to %s (%d days)\n",
		data.StartDate.Format(promptDateLayout), data.EndDate.Format(promptDateLayout), duration)
	fmt.Fprintf(&b, "**Travel Style:** %s\n", sanitizeInput(data.TravelStyle))
	fmt.Fprintf(&b, "**Interests:** %s\n", interestsText)
	if budgetText != "" {
		fmt.Fprintf(&b, "**Budget:** %s\n", budgetText)
	}
	if data.AdditionalNotes != nil && *data.AdditionalNotes != "" {
		fmt.Fprintf(&b, "**Additional Notes:** %s\n", sanitizeInput(*data.AdditionalNotes))
	}
	b.WriteString(`
Please create a comprehensive day-by-day itinerary that includes:
1. Daily activities aligned with the traveler's interests and style
2. Recommended places to visit with brief descriptions
3. Suggested dining options that fit the budget
4. Practical tips and local insights
5. Estimated costs breakdown if budget is specified
6. Transportation recommendations between locations

Format the itinerary in markdown with clear section headers. Make it engaging, practical, and personalized to the traveler's preferences.`)

	prompt := b.String()
	if len(prompt) > maxPromptLength {
		return "", &PromptTooLongError{Length: len(prompt)}
	}
	return prompt, nil
}
