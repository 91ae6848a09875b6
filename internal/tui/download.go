package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted reports that the user quit the display before the work
// finished. The work goroutine is abandoned; nothing it was mid-way through
// is visible in the store because placement is a final atomic rename.
var ErrAborted = errors.New("aborted")

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner.
type tickMsg time.Time

// DownloadModel is a bubbletea model that renders a single install as it
// moves through its phases: resolving the catalog, streaming the binary,
// committing it into the store.
type DownloadModel struct {
	title    string
	phase    string
	detail   string
	received int64
	total    int64
	done     bool
	err      error

	tick int
}

// NewDownloadModel creates a model titled after the requested spec.
func NewDownloadModel(title string) DownloadModel {
	return DownloadModel{title: title, phase: "resolving", total: -1}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m DownloadModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case PhaseMsg:
		m.phase = msg.Phase
		if msg.Detail != "" {
			m.detail = msg.Detail
		}
		return m, nil

	case BytesMsg:
		m.phase = "downloading"
		m.received = msg.Received
		m.total = msg.Total
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Quitting before the work reported in means the install
			// did not complete; a clean exit here would let the caller
			// announce success for work that never happened.
			if !m.done {
				m.err = ErrAborted
				m.done = true
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m DownloadModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteByte('\n')

	status := m.phase
	if m.detail != "" {
		status += " " + m.detail
	}
	if m.phase == "downloading" {
		status += " " + formatBytesProgress(m.received, m.total)
	}

	if m.done {
		fmt.Fprintf(&b, "%s\n", PhaseStyle(m.phase).Render(status))
		return b.String()
	}

	spinner := spinnerFrames[m.tick%len(spinnerFrames)]
	fmt.Fprintf(&b, "%s %s\n", spinner, PhaseStyle(m.phase).Render(status))
	return b.String()
}

// Done returns whether the model has finished (work done or error).
func (m DownloadModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m DownloadModel) Err() error {
	return m.err
}

// formatBytesProgress renders "12.4 MB / 248.0 MB (5%)", degrading to just
// the received count when the total is unknown.
func formatBytesProgress(received, total int64) string {
	if total <= 0 {
		return FormatBytes(received)
	}
	percent := received * 100 / total
	return fmt.Sprintf("%s / %s (%d%%)", FormatBytes(received), FormatBytes(total), percent)
}

// FormatBytes renders a byte count with a binary-ish decimal unit.
func FormatBytes(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}
