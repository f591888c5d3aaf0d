package instructor

import "log/slog"

// Instructor is what the protocol driver reads from a configured client.
// Options provides everything except Defaults.
type Instructor interface {
	Mode() Mode
	Encoder() Encoder
	MaxRounds() int
	RecursionDepth() int
	Validate() bool
	Verbose() bool
	Logger() *slog.Logger
	Metrics() Metrics
	// Defaults is a snapshot of the process wide prompt options. Fields left
	// empty on a prompt fall back to it.
	Defaults() PromptOptions
}
