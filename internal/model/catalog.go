package model

// DefaultPriority is preselected on a new request.
const DefaultPriority = "Scheduled"

var (
	supplies = []string{
		"Insulin",
		"Needles",
		"Syringes",
		"Gauze",
		"Bandages",
		"Gloves",
		"Alcohol",
		"Thermometer",
	}
	priorities = []string{"Urgent", DefaultPriority}
)

// Supplies returns the selectable supply names. The slice is a copy.
func Supplies() []string {
	return append([]string(nil), supplies...)
}

// Priorities returns the selectable priority levels. The slice is a copy.
func Priorities() []string {
	return append([]string(nil), priorities...)
}
