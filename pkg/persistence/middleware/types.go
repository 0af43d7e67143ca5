// Package middleware provides composable wrappers for plan stores, such as
// encryption at rest and masking of sensitive state values.
package middleware

import "github.com/arborhq/arbor/pkg/ports"

// Middleware allows wrapping a PlanStore to add behavior.
type Middleware func(ports.PlanStore) ports.PlanStore
