package coach

// Feedback messages, one per RPE band.
const (
	FeedbackMaximal   = "Maximum effort - consider deload"
	FeedbackVeryHard  = "Very hard - near failure"
	FeedbackHard      = "Hard - good training stimulus"
	FeedbackModerate  = "Moderate - sustainable effort"
	FeedbackLight     = "Light - room for more"
	FeedbackVeryLight = "Very light - increase intensity"
)

// RPEBand is the lowest RPE that earns a feedback message.
type RPEBand struct {
	Floor    float64 `json:"floor"`
	Feedback string  `json:"feedback"`
}

// rpeBands is ordered from the highest floor down; the first floor that rpe
// reaches wins.
var rpeBands = []RPEBand{
	{9.5, FeedbackMaximal},
	{9, FeedbackVeryHard},
	{8, FeedbackHard},
	{7, FeedbackModerate},
	{6, FeedbackLight},
}

// RPEScale lists the feedback bands, highest first. The last band (floor 0)
// also covers anything below zero.
func RPEScale() []RPEBand {
	scale := make([]RPEBand, 0, len(rpeBands)+1)
	scale = append(scale, rpeBands...)
	return append(scale, RPEBand{0, FeedbackVeryLight})
}

// RPEFeedback returns user-facing guidance for how hard a set felt.
// The value is not range-checked.
func RPEFeedback(rpe float64) string {
	for _, b := range rpeBands {
		if rpe >= b.Floor {
			return b.Feedback
		}
	}
	return FeedbackVeryLight
}

// VolumeLoad is weight × reps for one set. No rounding or validation.
func VolumeLoad(weight float64, reps int) float64 {
	return weight * float64(reps)
}
