// Package types defines the outcome codes shared by every check, patch and
// install step, and the user-facing message for each.
//
// Every failure has its own code because callers choose recovery from it:
// a hash mismatch after writing means restore from backup, a parse failure
// before writing means abort with nothing touched.
//
// This package has no dependencies beyond the standard library.
package types
