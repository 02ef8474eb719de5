// Package render validates a plan tree and serializes it into a document.
//
// Validation is exhaustive: Validate walks the whole tree and reports every
// violation it finds, in tree order, instead of stopping at the first one.
// Encoding is deterministic. Rendering the same plan twice yields
// byte-identical output, including the document ID, which is a name-based
// UUID of the plan's identifier.
package render
