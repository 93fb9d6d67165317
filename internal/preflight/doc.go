// Package preflight provides readiness checks for the binaries and
// filesystem paths stackreel depends on.
//
// The CLI "stackreel doctor" command prints every result; "stackreel render"
// runs RunAll first and refuses to start when a check fails. Each check is
// gated by its config toggle, so disabled features are skipped.
package preflight
