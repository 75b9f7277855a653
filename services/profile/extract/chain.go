package extract

import "fmt"

// Strategy is one attempt at producing a field value. Run returns the
// accepted value, or "" plus an optional reason describing the candidate it
// looked at and why it was rejected.
type Strategy struct {
	Name string
	Run  func() (value string, rejected string)
}

// runChain tries strategies in priority order, first accepted value wins and
// later strategies are never consulted. Rejections from strategies that ran
// before the winner are returned as diagnostics.
func runChain(field string, strategies []Strategy) (string, []string) {
	var diags []string
	for _, s := range strategies {
		value, rejected := s.Run()
		if rejected != "" {
			diags = append(diags, fmt.Sprintf("%s: %s: rejected %s", field, s.Name, rejected))
		}
		if value != "" {
			return value, diags
		}
	}
	return "", diags
}
