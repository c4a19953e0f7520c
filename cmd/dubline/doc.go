// Package main hosts the dubline CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the structured
// logger, and hands segment manifests to the export pipeline. Commands stay
// thin: anything reusable lives under internal/ and is surfaced here through
// flags.
package main
