package kerr

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
)

// NewLogger returns a go-kit logfmt logger writing to w, with a timestamp
// prepended to every line. This mirrors the teacher's use of
// github.com/go-kit/kit/log as a leveled, key-value structured logger
// (mission.go's "level", "info"/"notice"/"critical" calls).
func NewLogger(w io.Writer) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(w)
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
}

// NopLogger discards everything. Driver/Render default to this when no
// logger is supplied, so logging is opt-in rather than forced onto stdout.
func NopLogger() kitlog.Logger {
	return kitlog.NewNopLogger()
}
