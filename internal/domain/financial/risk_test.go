package financial

import "testing"

func TestComputeRisk_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		clinic   ClinicState
		asc      AscState
		override OverrideState
		want     RiskTier
	}{
		{"override cleared always wins", DeclaredAtRisk, VerifiedAtRisk, OverrideCleared, TierLow},
		{"override at risk beats both signals", DeclaredCleared, VerifiedCleared, OverrideAtRisk, TierHigh},
		{"facility at risk outranks clinic cleared", DeclaredCleared, VerifiedAtRisk, OverrideNone, TierHigh},
		{"facility at risk outranks clinic at risk", DeclaredAtRisk, VerifiedAtRisk, OverrideNone, TierHigh},
		{"clinic at risk alone is medium", DeclaredAtRisk, AscUnknown, OverrideNone, TierMedium},
		{"clinic at risk with facility cleared is medium", DeclaredAtRisk, VerifiedCleared, OverrideNone, TierMedium},
		{"both cleared is low", DeclaredCleared, VerifiedCleared, OverrideNone, TierLow},
		{"facility cleared with clinic unknown stays unknown", ClinicUnknown, VerifiedCleared, OverrideNone, TierUnknown},
		{"clinic cleared alone stays unknown", DeclaredCleared, AscUnknown, OverrideNone, TierUnknown},
		{"no data at all", ClinicUnknown, AscUnknown, OverrideNone, TierUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRisk(tt.clinic, tt.asc, tt.override); got != tt.want {
				t.Errorf("ComputeRisk(%s, %s, %s) = %s, want %s",
					tt.clinic, tt.asc, tt.override, got, tt.want)
			}
		})
	}
}

func TestComputeRisk_Total(t *testing.T) {
	clinics := []ClinicState{DeclaredCleared, DeclaredAtRisk, ClinicUnknown}
	ascs := []AscState{VerifiedCleared, VerifiedAtRisk, AscUnknown}
	overrides := []OverrideState{OverrideCleared, OverrideAtRisk, OverrideNone}
	valid := map[RiskTier]bool{TierLow: true, TierMedium: true, TierHigh: true, TierUnknown: true}

	for _, clinic := range clinics {
		for _, asc := range ascs {
			for _, override := range overrides {
				if got := ComputeRisk(clinic, asc, override); !valid[got] {
					t.Errorf("ComputeRisk(%s, %s, %s) returned invalid tier %q",
						clinic, asc, override, got)
				}
			}
		}
	}
}

func TestComputeRisk_Deterministic(t *testing.T) {
	first := ComputeRisk(DeclaredAtRisk, VerifiedCleared, OverrideNone)
	for i := 0; i < 10; i++ {
		if got := ComputeRisk(DeclaredAtRisk, VerifiedCleared, OverrideNone); got != first {
			t.Fatalf("not deterministic: %s vs %s", got, first)
		}
	}
}
