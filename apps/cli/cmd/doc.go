// Package cmd implements the asynchttp CLI commands using Cobra.
//
// Available commands:
//   - get: Send a GET request and print the raw response
//   - post: Send a POST request with a form, JSON, XML or text body
//   - history: List exchanges recorded in the history database
//   - version: Show asynchttp version information
//
// Requests are driven by the non-blocking engine; --repeat reports latency
// percentiles and --watch re-sends whenever the body file changes.
package cmd
