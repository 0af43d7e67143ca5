package arbor

import _ "embed"

// Version is the library version, read from the VERSION file at the
// repository root. Callers should strings.TrimSpace it.
//
//go:embed VERSION
var Version string
