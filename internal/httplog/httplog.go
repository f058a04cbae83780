// Package httplog wires structured logging into the engine, replacing
// the teacher's bare log.Printf calls (utils/netpool/connection.go:
// "netpool: error on write. %v\n") with leveled, structured zap logging.
// Grounded on zulfikawr-warp, the only pack repo carrying a structured
// logging dependency (go.uber.org/zap). A library package should stay
// silent by default, so Nop returns a logger that discards everything
// unless a caller opts in via Config.Logger.
package httplog

import "go.uber.org/zap"

// Nop returns a no-op logger, the default when a caller doesn't supply
// one via Config.
func Nop() *zap.Logger {
	return zap.NewNop()
}
