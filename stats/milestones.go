package stats

// Milestone is one configured streak-length threshold. The table is static,
// compiled in, strictly increasing by ThresholdDays and never mutated at
// runtime.
type Milestone struct {
	ThresholdDays int    `json:"threshold_days"`
	Label         string `json:"label"`
	VisualTier    int    `json:"visual_tier"`
}

// Milestones lists the celebration thresholds in ascending order.
var Milestones = []Milestone{
	{ThresholdDays: 3, Label: "Spark", VisualTier: 1},
	{ThresholdDays: 7, Label: "Flame", VisualTier: 1},
	{ThresholdDays: 14, Label: "Torch", VisualTier: 2},
	{ThresholdDays: 30, Label: "Bonfire", VisualTier: 2},
	{ThresholdDays: 60, Label: "Blaze", VisualTier: 3},
	{ThresholdDays: 100, Label: "Wildfire", VisualTier: 3},
	{ThresholdDays: 365, Label: "Eternal Flame", VisualTier: 4},
}

// MilestoneAt returns the milestone whose threshold equals days exactly.
func MilestoneAt(days int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.ThresholdDays == days {
			return m, true
		}
	}
	return Milestone{}, false
}

// NextMilestone returns the first milestone past the given streak length.
func NextMilestone(days int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.ThresholdDays > days {
			return m, true
		}
	}
	return Milestone{}, false
}
