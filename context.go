// Package cyberxp holds the small bag of ambient dependencies cmd/cyberxp's
// training and dashboard code needs — currently just the logger — built
// once in main and threaded down explicitly, rather than reached for as a
// package-level global.
package cyberxp

import "go.uber.org/zap"

// Context is the process-wide dependency bag passed down through the
// training call graph. The model registry deliberately has no place here:
// symbolic.GetModel is itself a mutex-guarded, process-wide registry keyed
// by name, so callers that want an isolated model just pick a distinct
// name rather than carrying a registry handle around.
type Context struct {
	Log *zap.SugaredLogger
}

// NewContext builds a Context around log.
func NewContext(log *zap.SugaredLogger) *Context {
	return &Context{Log: log}
}
