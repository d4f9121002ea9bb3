package sheet

// ANSISpecs returns the ANSI Y14.1 engineering sizes. Civil and MEP sets
// are often issued on ANSI D.
func ANSISpecs() []*Spec {
	return []*Spec{
		{Name: "ANSI A (Letter)", Family: FamilyANSI, WidthInches: 11, HeightInches: 8.5},
		{Name: "ANSI B (Tabloid)", Family: FamilyANSI, WidthInches: 17, HeightInches: 11},
		{Name: "ANSI C", Family: FamilyANSI, WidthInches: 22, HeightInches: 17},
		{Name: "ANSI D", Family: FamilyANSI, WidthInches: 34, HeightInches: 22},
		{Name: "ANSI E", Family: FamilyANSI, WidthInches: 44, HeightInches: 34},
	}
}
