package tui

// PhaseMsg moves the display to a named phase (resolving, downloading,
// installing).
type PhaseMsg struct {
	Phase string
	// Detail is optional extra text, e.g. the resolved version.
	Detail string
}

// BytesMsg reports download progress. Total is -1 when unknown.
type BytesMsg struct {
	Received int64
	Total    int64
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
