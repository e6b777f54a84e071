// Package logging builds the daemon's structured logger. Every component
// takes a *zap.Logger rather than reaching for a package-global, matching
// the dependency-injected-logger shape used throughout the example corpus.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development one (human-readable,
// debug level) when debug is true.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
