package narrative

import (
	"fmt"

	"github.com/kfadel/gridops/core/model"
)

// systemPrompt encodes the safety rules and the fixed response schema. The
// backend may only use data present in the user prompt.
const systemPrompt = `You are an expert electrical grid operations advisor for a power distribution utility.

CRITICAL RULES:
- Only use data provided in the input
- Do NOT invent switch states or transformer capacities
- Output MUST be valid JSON matching the exact schema provided
- Include standard electrical safety reminders (PPE, lockout/tagout, voltage verification)
- No dangerous instructions beyond standard utility procedures
- If data is missing, say "insufficient data" in assumptions
- Use clear, professional language suitable for control room operators

Output schema (MUST match exactly):
{
  "executive_summary": "3-5 sentence plain language summary explaining what, why, and expected outcome",
  "operator_steps": ["Step 1: ...", "Step 2: ...", ...],
  "field_checklist": ["PPE verification", "Lockout/tagout", "Voltage verification", ...],
  "rollback_steps": ["If voltage >X, revert switch Y", "If customer complaints, ...", ...],
  "assumptions": ["Forecast error ±6%", "Weather conditions stable", ...],
  "confidence": 0.82
}

Confidence scoring:
- 0.90-1.0: Complete data, straightforward transfer, minimal risk
- 0.75-0.89: Good data, standard procedure, moderate complexity
- 0.60-0.74: Some uncertainties, requires careful monitoring
- Below 0.60: Insufficient data or high-risk scenario

Safety-first mindset: When in doubt, include additional verification steps.`

// buildUserPrompt renders the plan's own fields into the request. Nothing
// outside the plan is exposed to the backend.
func buildUserPrompt(p model.MitigationPlan) string {
	return fmt.Sprintf(`Generate a detailed action plan for this load transfer operation:

TRANSFORMER INFORMATION:
- Source: %s
- Destination: %s
- Transfer amount: %.0f kW
- Via switch: %s

CURRENT STATE:
- Source load: %.1f%% of rated capacity
- Risk score: %.3f

EXPECTED OUTCOME:
- Source load after transfer: %.1f%%
- Risk score after transfer: %.3f
- Risk reduction: %.3f

OBJECTIVE:
Prevent transformer overload by safely transferring %.0f kW to a neighbor transformer with available capacity.

Generate a complete action plan with:
1. Executive summary (why this transfer is necessary, what it achieves)
2. Operator steps (5-8 steps for control room, including pre-checks, switching sequence, monitoring)
3. Field checklist (safety procedures: PPE, lockout/tagout, voltage verification, etc.)
4. Rollback steps (what to do if voltage deviates, customer complaints, or unexpected behavior)
5. Assumptions (forecast accuracy, weather stability, no concurrent outages, etc.)
6. Confidence score (0.0-1.0 based on data completeness and operation complexity)

Return ONLY valid JSON matching the schema. No additional text.`,
		p.FromName, p.ToName, p.TransferKW, p.SwitchName,
		p.LoadBeforePct, p.RiskBefore,
		p.LoadAfterPct, p.RiskAfter, p.RiskReduction,
		p.TransferKW)
}
