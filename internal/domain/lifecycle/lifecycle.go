// Package lifecycle holds shared constants for application start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single OnStart or OnStop hook, e.g. a store ping or disconnect.
const DefaultTimeout = 10 * time.Second
