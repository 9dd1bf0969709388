// Package startup loads configuration from the environment and emits
// the structured startup/shutdown log sections.
package startup
