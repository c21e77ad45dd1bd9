// Package capture extracts values from raw response text.
//
// Responses are never parsed as HTTP; the body is simply whatever follows
// the first blank line. JSON paths use gjson syntax.
package capture
