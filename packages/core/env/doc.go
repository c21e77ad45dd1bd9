// Package env handles variables substituted into request URLs, headers and bodies.
//
// It provides functionality for:
//   - Loading .env files
//   - Variable interpolation using {{name}} syntax
//   - OS environment lookups with {{$NAME}}
//   - Generated values: {{uuid}}, {{timestamp}}
package env
