package scoring

type RiskCategory string

const (
	RiskVeryLow  RiskCategory = "Very Low Risk"
	RiskLow      RiskCategory = "Low Risk"
	RiskMedium   RiskCategory = "Medium Risk"
	RiskHigh     RiskCategory = "High Risk"
	RiskVeryHigh RiskCategory = "Very High Risk"
)

// Band is one row of the fixed risk table. A score belongs to the first band
// whose lower bound it reaches.
type Band struct {
	Min                float64
	Category           RiskCategory
	RecommendedMaxLoan string
}

var bands = []Band{
	{80, RiskVeryLow, "≥ ₦500,000"},
	{60, RiskLow, "₦250,000–500,000"},
	{40, RiskMedium, "₦100,000–250,000"},
	{20, RiskHigh, "₦50,000–100,000"},
	{0, RiskVeryHigh, "< ₦50,000"},
}

// Bands returns the risk table from the lowest risk down.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// BandFor returns the band of a final score. Scores below 0 fall in the last band.
func BandFor(score float64) Band {
	for _, b := range bands[:len(bands)-1] {
		if score >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}

// ParseRiskCategory accepts a category label as written in Bands.
func ParseRiskCategory(s string) (RiskCategory, bool) {
	for _, b := range bands {
		if string(b.Category) == s {
			return b.Category, true
		}
	}
	return "", false
}
