// Package hooks provides the custom completion hooks an exercise can use
// instead of rule-based verification.
//
// Hooks come in two forms: Go functions registered by name in a Registry,
// and expr-lang expressions compiled with Compile. Both yield a
// domain.EjectFunc.
package hooks
