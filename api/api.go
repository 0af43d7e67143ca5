// Package api carries the OpenAPI description of the planner's HTTP surface.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3.0 document served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
