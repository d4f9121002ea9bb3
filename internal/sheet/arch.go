package sheet

// ArchSpecs returns the US architectural sizes used for most building plans.
// ARCH E1 (30 x 42) is common for permit sets.
func ArchSpecs() []*Spec {
	return []*Spec{
		{Name: "ARCH A", Family: FamilyArch, WidthInches: 12, HeightInches: 9},
		{Name: "ARCH B", Family: FamilyArch, WidthInches: 18, HeightInches: 12},
		{Name: "ARCH C", Family: FamilyArch, WidthInches: 24, HeightInches: 18},
		{Name: "ARCH D", Family: FamilyArch, WidthInches: 36, HeightInches: 24},
		{Name: "ARCH E1", Family: FamilyArch, WidthInches: 42, HeightInches: 30},
		{Name: "ARCH E", Family: FamilyArch, WidthInches: 48, HeightInches: 36},
	}
}
