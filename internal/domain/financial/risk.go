package financial

// ComputeRisk classifies a surgery request's financial risk from the three
// latest signal values. Pure and total over all input combinations; first
// matching rule wins.
//
// An administrative override always wins because it represents a human
// decision. A verified-at-risk from the facility outranks the milder clinic
// signal. LOW requires both parties cleared; one optimistic party can never
// clear risk unilaterally, so facility-cleared with clinic-unknown stays
// UNKNOWN.
func ComputeRisk(clinic ClinicState, asc AscState, override OverrideState) RiskTier {
	switch {
	case override == OverrideCleared:
		return TierLow
	case override == OverrideAtRisk:
		return TierHigh
	case asc == VerifiedAtRisk:
		return TierHigh
	case clinic == DeclaredAtRisk:
		return TierMedium
	case asc == VerifiedCleared && clinic == DeclaredCleared:
		return TierLow
	default:
		return TierUnknown
	}
}
