// Package testutil holds helpers shared by package tests: a fixed trace id
// generator for deterministic CLI output, golden file assertions and
// temporary file setup.
package testutil
