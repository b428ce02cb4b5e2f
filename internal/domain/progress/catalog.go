package progress

// Studio type constants
const (
	StudioYoga   = "yoga"
	StudioGym    = "gym"
	StudioHybrid = "hybrid"
)

var commonMetrics = []MetricDefinition{
	{Name: "Classes Attended", Category: "attendance", Unit: "classes", Icon: "calendar-check", Aggregation: AggregationSum, VisibleToStudents: true},
	{Name: "Attendance Streak", Category: "attendance", Unit: "weeks", Icon: "flame", Aggregation: AggregationMax, VisibleToStudents: true},
}

var yogaMetrics = []MetricDefinition{
	{Name: "Minutes Practiced", Category: "practice", Unit: "minutes", Icon: "clock", Aggregation: AggregationSum, VisibleToStudents: true},
	{Name: "Longest Balance Hold", Category: "strength", Unit: "seconds", Icon: "timer", Aggregation: AggregationMax, VisibleToStudents: true},
	{Name: "Forward Fold Reach", Category: "flexibility", Unit: "cm", Icon: "move-down", Aggregation: AggregationLatest, VisibleToStudents: true},
	{Name: "Meditation Sessions", Category: "mindfulness", Unit: "sessions", Icon: "sparkles", Aggregation: AggregationSum, VisibleToStudents: true},
}

var gymMetrics = []MetricDefinition{
	{Name: "Deadlift 1RM", Category: "strength", Unit: "kg", Icon: "dumbbell", Aggregation: AggregationMax, VisibleToStudents: true},
	{Name: "Back Squat 1RM", Category: "strength", Unit: "kg", Icon: "dumbbell", Aggregation: AggregationMax, VisibleToStudents: true},
	{Name: "Bench Press 1RM", Category: "strength", Unit: "kg", Icon: "dumbbell", Aggregation: AggregationMax, VisibleToStudents: true},
	{Name: "Body Weight", Category: "body", Unit: "kg", Icon: "scale", Aggregation: AggregationLatest, VisibleToStudents: false},
	{Name: "Body Fat", Category: "body", Unit: "%", Icon: "percent", Aggregation: AggregationLatest, VisibleToStudents: false},
	{Name: "Workouts Logged", Category: "training", Unit: "workouts", Icon: "activity", Aggregation: AggregationSum, VisibleToStudents: true},
}

// DefaultCatalog returns the metric templates seeded for a studio type, in display order.
// PRE: none
// POST: Returns ErrInvalidStudioType for unknown types; templates have no ID or tenant
func DefaultCatalog(studioType string) ([]MetricDefinition, error) {
	var groups [][]MetricDefinition
	switch studioType {
	case StudioYoga:
		groups = [][]MetricDefinition{commonMetrics, yogaMetrics}
	case StudioGym:
		groups = [][]MetricDefinition{commonMetrics, gymMetrics}
	case StudioHybrid:
		groups = [][]MetricDefinition{commonMetrics, yogaMetrics, gymMetrics}
	default:
		return nil, ErrInvalidStudioType
	}

	var out []MetricDefinition
	for _, g := range groups {
		for _, m := range g {
			m.Active = true
			m.DisplayOrder = len(out) + 1
			out = append(out, m)
		}
	}
	return out, nil
}
