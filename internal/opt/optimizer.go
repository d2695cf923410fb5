// Package opt provides derivative-free global search used to seed the open
// root-finding methods when no sign-change bracket is known.
package opt

// Optimizer minimises an objective over the box [lower, upper]^dim
type Optimizer interface {
	// Minimize returns the best position found and its cost
	Minimize(objective func([]float64) float64, lower, upper float64, dim int) ([]float64, float64, error)
}
