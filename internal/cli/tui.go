package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/html2deck/pkg/observability"
)

// =============================================================================
// BatchModel - live per-file status table
// =============================================================================

type fileState int

const (
	stateQueued fileState = iota
	stateRunning
	stateConverted
	stateCached
	stateFailed
	stateAbandoned
)

type fileRow struct {
	name    string
	worker  int
	state   fileState
	slides  int
	elapsed time.Duration
	started time.Time
}

// Messages sent by [batchHooks] while the batch runs.
type (
	batchStartMsg struct{ workers int }
	fileStartMsg  struct {
		worker int
		file   string
	}
	fileDoneMsg struct {
		worker  int
		file    string
		slides  int
		cached  bool
		elapsed time.Duration
		err     error
	}
	fileAbandonedMsg struct {
		worker int
		file   string
	}
	batchDoneMsg struct{}
	tickMsg      time.Time
)

// BatchModel is the bubbletea model for the batch status table.
type BatchModel struct {
	rows    []fileRow
	index   map[string]int
	workers int
	frame   int
	done    bool
	cancel  context.CancelFunc
	start   time.Time
}

// NewBatchModel creates a table for files. cancel is called when the user
// interrupts the batch.
func NewBatchModel(files []string, cancel context.CancelFunc) BatchModel {
	m := BatchModel{
		rows:    make([]fileRow, len(files)),
		index:   make(map[string]int, len(files)),
		cancel:  cancel,
		start:   time.Now(),
	}
	for i, f := range files {
		m.rows[i] = fileRow{name: filepath.Base(f), worker: -1}
		m.index[f] = i
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m BatchModel) Init() tea.Cmd {
	return tick()
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			if m.cancel != nil {
				m.cancel()
			}
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case batchStartMsg:
		m.workers = msg.workers
	case fileStartMsg:
		if r := m.row(msg.file); r != nil {
			r.worker = msg.worker
			r.state = stateRunning
			r.started = time.Now()
		}
	case fileDoneMsg:
		if r := m.row(msg.file); r != nil {
			r.worker = msg.worker
			r.slides = msg.slides
			r.elapsed = msg.elapsed
			switch {
			case msg.err != nil:
				r.state = stateFailed
			case msg.cached:
				r.state = stateCached
			default:
				r.state = stateConverted
			}
		}
	case fileAbandonedMsg:
		if r := m.row(msg.file); r != nil {
			r.worker = msg.worker
			r.state = stateAbandoned
		}
	case batchDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// row returns a pointer into m.rows. Update works on its own copy of the
// model, so writes through it land in the returned model.
func (m BatchModel) row(file string) *fileRow {
	i, ok := m.index[file]
	if !ok {
		return nil
	}
	return &m.rows[i]
}

func (m BatchModel) View() string {
	var b strings.Builder

	finished := 0
	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		if r.state > stateRunning {
			finished++
		}
		worker, slides, elapsed := "", "", ""
		if r.worker >= 0 {
			worker = fmt.Sprint(r.worker)
		}
		if r.slides > 0 {
			slides = fmt.Sprint(r.slides)
		}
		switch {
		case r.state == stateRunning:
			elapsed = time.Since(r.started).Round(100 * time.Millisecond).String()
		case r.state > stateRunning && r.state != stateAbandoned:
			elapsed = r.elapsed.Round(time.Millisecond).String()
		}
		rows[i] = []string{fmt.Sprint(i + 1), r.name, worker, m.status(r.state), slides, elapsed}
	}

	b.WriteString(StyleTitle.Render("Converting decks"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d files · %d workers · %s",
		finished, len(m.rows), m.workers, time.Since(m.start).Round(time.Second))))
	b.WriteString("\n\n")

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "File", "Worker", "Status", "Slides", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(m.rows) {
				return base
			}
			if m.rows[row].state == stateQueued {
				return base.Foreground(colorDim)
			}
			return base
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	if !m.done {
		b.WriteString(StyleDim.Render("ctrl+c cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m BatchModel) status(s fileState) string {
	switch s {
	case stateRunning:
		return styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)] + " converting")
	case stateConverted:
		return StyleSuccess.Render(iconSuccess + " converted")
	case stateCached:
		return styleCached.Render(iconSuccess + " " + iconCached)
	case stateFailed:
		return StyleError.Render(iconError + " failed")
	case stateAbandoned:
		return StyleWarning.Render(iconWarning + " abandoned")
	}
	return "queued"
}

// =============================================================================
// batchHooks - pipeline events into the program
// =============================================================================

// batchHooks forwards pipeline events to a running program.
type batchHooks struct {
	observability.NoopPipelineHooks
	send func(tea.Msg)
}

func (h batchHooks) OnBatchStart(_ context.Context, _ []string, workers int) {
	h.send(batchStartMsg{workers: workers})
}

func (h batchHooks) OnFileStart(_ context.Context, worker int, file string) {
	h.send(fileStartMsg{worker: worker, file: file})
}

func (h batchHooks) OnFileComplete(_ context.Context, worker int, file string, slides int, cached bool, elapsed time.Duration, err error) {
	h.send(fileDoneMsg{worker: worker, file: file, slides: slides, cached: cached, elapsed: elapsed, err: err})
}

func (h batchHooks) OnFileAbandoned(_ context.Context, worker int, file string, _ error) {
	h.send(fileAbandonedMsg{worker: worker, file: file})
}
