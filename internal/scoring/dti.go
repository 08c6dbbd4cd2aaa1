package scoring

type DebtBand string

const (
	DebtGood       DebtBand = "Good"
	DebtConcerning DebtBand = "Concerning"
	DebtRisky      DebtBand = "Risky"
)

// DebtToIncome returns monthly debt payments as a percentage of monthly
// income, with its band. It is undefined when income is not positive.
func DebtToIncome(monthlyDebts, monthlyIncome float64) (float64, DebtBand, bool) {
	if monthlyIncome <= 0 {
		return 0, "", false
	}
	ratio := monthlyDebts * 100 / monthlyIncome
	switch {
	case ratio <= 36:
		return ratio, DebtGood, true
	case ratio <= 42:
		return ratio, DebtConcerning, true
	default:
		return ratio, DebtRisky, true
	}
}
