package risk

import (
	"fmt"
	"time"

	"github.com/kfadel/gridops/core/model"
)

// explainThreshold is the component score above which a factor is considered
// dominant enough to headline the explanation.
const explainThreshold = 0.5

// buildExplanation emits a deterministic operator-readable explanation for
// the assessment. The dominant component headlines it; ties resolve in the
// order overload, thermal, cascading.
func buildExplanation(unit model.Transformer, fc model.Forecast, c model.RiskComponents, now time.Time) model.Explanation {
	max := c.Overload
	if c.Thermal > max {
		max = c.Thermal
	}
	if c.Cascading > max {
		max = c.Cascading
	}

	var e model.Explanation
	switch {
	case max == c.Overload && c.Overload > explainThreshold:
		e.Primary = fmt.Sprintf("Predicted overload: %.2f%% of rated capacity", fc.PeakPct)
		e.Bullets = append(e.Bullets, fmt.Sprintf("Peak load predicted at %s", fc.PeakTime.Format("2006-01-02 15:04")))
		if fc.PeakPct > 100 {
			e.Bullets = append(e.Bullets, fmt.Sprintf("CRITICAL: Load exceeds transformer rating by %.1f%%", fc.PeakPct-100))
			e.Recommendations = append(e.Recommendations, "Generate mitigation plan immediately")
		} else {
			e.Bullets = append(e.Bullets, fmt.Sprintf("WARNING: Operating near capacity limit (%.0f%%)", unit.MaxLoadPct))
			e.Recommendations = append(e.Recommendations, "Monitor closely and prepare contingency plan")
		}

	case max == c.Thermal && c.Thermal > explainThreshold:
		e.Primary = "Elevated thermal risk"
		e.Bullets = append(e.Bullets, "High ambient temperature affecting transformer cooling")
		if age := unit.Age(now); age > 25 {
			e.Bullets = append(e.Bullets, fmt.Sprintf("Transformer age: %d years (aging equipment more vulnerable)", age))
		}
		e.Recommendations = append(e.Recommendations,
			"Consider load reduction during hot hours",
			"Verify cooling system operation")

	case max == c.Cascading && c.Cascading > explainThreshold:
		e.Primary = "High cascading failure risk"
		e.Bullets = append(e.Bullets,
			"Neighbor transformers also heavily loaded",
			"Limited load transfer options available")
		e.Recommendations = append(e.Recommendations,
			"Review regional load distribution",
			"Consider demand response program")

	default:
		e.Primary = "Normal operation with elevated monitoring"
		e.Bullets = append(e.Bullets, "Multiple minor risk factors detected")
		e.Recommendations = append(e.Recommendations, "Continue standard monitoring procedures")
	}
	return e
}
