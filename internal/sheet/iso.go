package sheet

const mmPerInch = 25.4

func iso(name string, wmm, hmm float64) *Spec {
	return &Spec{Name: name, Family: FamilyISO, WidthInches: wmm / mmPerInch, HeightInches: hmm / mmPerInch}
}

// ISOSpecs returns the ISO 216 A series from A4 to A0.
func ISOSpecs() []*Spec {
	return []*Spec{
		iso("ISO A4", 297, 210),
		iso("ISO A3", 420, 297),
		iso("ISO A2", 594, 420),
		iso("ISO A1", 841, 594),
		iso("ISO A0", 1189, 841),
	}
}
