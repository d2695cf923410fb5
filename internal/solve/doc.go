// Package solve implements the classical scalar root finders: bisection,
// regula falsi, Newton-Raphson and fixed-point iteration with optional
// Aitken Δ² acceleration.
//
// Every solver is synchronous and deterministic. It evaluates the supplied
// callables, records one Step per loop iteration and returns a Result that
// carries the full ordered history. Running out of iterations is not an
// error: callers inspect Result.Converged before trusting Result.Root.
// Errors are reserved for precondition violations (bad bracket, bad
// tolerance, vanishing derivative).
//
// The package also ships the upstream helpers used to seed the solvers: a
// sign-change grid scanner, a Fourier-style convergence diagnostic for
// Newton's method and a fixed-point seed selector.
package solve
