package narrative

import (
	"fmt"

	"github.com/kfadel/gridops/core/model"
)

// fallbackConfidence is the fixed confidence of the template fallback.
const fallbackConfidence = 0.75

// Fallback synthesizes a schema-valid bundle from the plan's numeric fields
// using fixed templates. It never fails, even on degenerate plan input.
func Fallback(p model.MitigationPlan) Bundle {
	fromName := orUnknown(p.FromName, "source")
	toName := orUnknown(p.ToName, "destination")
	switchName := orUnknown(p.SwitchName, "tie switch")

	return Bundle{
		ExecutiveSummary: fmt.Sprintf(
			"Transformer %s is predicted to reach %.1f%% load, exceeding safe operating limits. "+
				"Transferring %.0f kW to %s via %s will reduce load to %.1f%% and decrease risk by %.3f. "+
				"This is a standard load balancing operation following utility procedures.",
			fromName, p.LoadBeforePct, p.TransferKW, toName, switchName, p.LoadAfterPct, p.RiskReduction),
		OperatorSteps: []string{
			fmt.Sprintf("1. Verify %s is available and not under maintenance", switchName),
			fmt.Sprintf("2. Confirm %s has sufficient capacity (check current load < 85%%)", toName),
			"3. Notify field crew and obtain confirmation of readiness",
			fmt.Sprintf("4. Close %s to enable load transfer", switchName),
			fmt.Sprintf("5. Monitor voltage and load on both %s and %s for 10 minutes", fromName, toName),
			fmt.Sprintf("6. Verify %s load drops to expected level", fromName),
			"7. Confirm no customer complaints or voltage issues",
			"8. Document operation in system logs",
		},
		FieldChecklist: []string{
			"Personal Protective Equipment (PPE) verified and worn",
			"Lockout/tagout procedures followed per utility standards",
			"Voltage verification performed before switch operation",
			"Communication equipment functional and tested",
			"Emergency contacts and rollback plan reviewed",
			"Weather conditions checked (avoid operations during storms)",
			"Backup crew notified and on standby",
		},
		RollbackSteps: []string{
			fmt.Sprintf("1. If voltage deviation exceeds 1.05 per-unit, immediately reopen %s", switchName),
			"2. If customer complaints received within 5 minutes, revert operation",
			fmt.Sprintf("3. If %s load exceeds 90%%, partial rollback may be required", toName),
			"4. Notify control room supervisor of any abnormal conditions",
			"5. Document all observations and actions taken",
			"6. Await further instructions before re-attempting transfer",
		},
		Assumptions: []string{
			"Forecast accuracy ±6% based on historical performance",
			"Weather conditions remain stable during operation",
			"No concurrent outages or maintenance in the area",
			fmt.Sprintf("%s transformer is operating normally", toName),
			"Communication systems remain functional",
			"Standard utility safety procedures are followed",
		},
		Confidence: fallbackConfidence,
	}
}

func orUnknown(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
