// Package preflight provides readiness checks for the binaries and
// directories dubline depends on.
//
// The export command calls RunAll before starting a job and refuses to run
// when a required check fails. The "dubline check" command renders the same
// results, plus CheckSystemDeps, as a table.
package preflight
