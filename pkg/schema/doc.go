// Package schema derives the field list of the configure step and validates submissions.
//
// Derivation is table driven: each input and output selection id maps to the
// fields it requires, and a fixed set of general fields is always appended.
//
//	deriver := schema.NewDeriver(schema.DefaultRules())
//	fields := deriver.Derive(draft)
//
//	result := schema.Validate(fields, submitted)
//	if !result.OK() {
//	    // show result.Errors() next to each input
//	}
//
// New integrations are added by extending the Rules table (in Go or from the
// YAML catalog), never by adding branches to the derivation code.
//
// Validation only checks required-ness. Format checks (URL shape, enum
// membership) are advisory: they populate Result.Hints and never fail a field.
//
// This package depends only on the domain package and the Go standard library.
package schema
