/*
Package dsl provides a fluent builder for programmatically constructing
planning domains.

It allows developers to define task networks using a type-safe builder
instead of external YAML files. This is particularly useful for dynamic
domain generation, unit testing, and leveraging IDE autocompletion and
type-checking.

Example usage:

	b := dsl.New("delivery").
		Allow("load", "workflow.load").
		Allow("fly", "workflow.fly").
		Allow("drive", "workflow.drive")

	b.Primitive("load").Action("load", map[string]any{"bay": 3}).
		ExpectSet(map[string]any{"cargo": "loaded"})

	b.Primitive("fly").Action("fly", nil).
		WhenExpr("fuel >= 50")

	b.Primitive("drive").Action("drive", nil).
		WhenExpr("fuel >= 10")

	c := b.Compound("root")
	c.Method("by_air").Priority(10).Tasks("load", "fly")
	c.Method("by_road").Priority(20).Tasks("load", "drive")

	d, err := b.Build()
	// ... plan against d

Conditions come in four forms: a named callback (When), an inline predicate
(WhenFunc), a compiled expression (WhenExpr), and a literal (WhenLiteral).
Effects mirror this with named transforms (Effect/Expect), inline transforms
(EffectFunc/ExpectFunc), and key merges (EffectSet/ExpectSet). Only named
references survive serialization; domains meant for persistence should avoid
the inline forms.

Build runs the full domain validation and fails closed; MustBuild panics
instead and suits package-level fixtures.
*/
package dsl
