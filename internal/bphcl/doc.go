// Package bphcl holds small HCL and cty helpers shared by the descriptor
// loader, the expression fragments and the HCL document encoder.
package bphcl
