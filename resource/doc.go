// Package resource enforces process-wide budgets shared by tables:
// fragment memory, background scan workers and image IO throughput.
//
// A nil *Controller is valid and imposes no limits.
package resource
