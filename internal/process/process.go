// Package process terminates browser process trees left behind by the Chrome
// rendering engine.
package process

import "errors"

// ErrInvalidPID is returned for pids that would address the caller's own
// process group or every process.
var ErrInvalidPID = errors.New("invalid pid")
