package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/fdglue/internal/transfer"
	"github.com/dustin/go-humanize"
)

const (
	// maxLogLines is the number of log lines kept for the logs panel.
	maxLogLines = 100

	// progressInterval is the interval at which progress is polled.
	progressInterval = 100 * time.Millisecond
)

//nolint:gochecknoglobals
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// ProgressMsg is a [tea.Msg] containing [transfer.Progress] information.
type ProgressMsg struct {
	t    time.Time
	data transfer.Progress
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler
	title     string

	fullWidthWithBorders int

	data         transfer.Progress
	progressBar  progress.Model
	logsViewport viewport.Model
	logs         []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, title string, cancel context.CancelFunc) TeaModel {
	return TeaModel{
		uiHandler: uiHandler,
		title:     title,
		progressBar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		),
		logsViewport: viewport.New(80, 20),
		logs:         make([]string, 0, maxLogLines),
		cancel:       cancel,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		updateProgress(m.uiHandler.progressHandler),
	)
}

// updateProgress produces a [tea.Cmd] that returns a [ProgressMsg] after
// [progressInterval].
func updateProgress(p progressProvider) tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg {
		return ProgressMsg{
			t:    t,
			data: p.Progress(),
		}
	})
}

// Update is the principal message handling method of the model.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fullWidthWithBorders = m.width - 2

		m.progressBar.Width = m.fullWidthWithBorders - 2

		// The progress panel takes a fixed 9 lines, the rest goes to the logs.
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = max(m.height-9-4, 1)
		m.refreshLogs()

		if !m.ready {
			m.ready = true
			m.uiHandler.Initialized.Store(true)
		}

	case ProgressMsg:
		m.data = msg.data
		cmds = append(cmds,
			m.progressBar.SetPercent(m.data.ProgressPct/100),
			updateProgress(m.uiHandler.progressHandler),
		)

	case LogMsg:
		if len(m.logs) >= maxLogLines {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))
		m.refreshLogs()

	case progress.FrameMsg:
		updated, cmd := m.progressBar.Update(msg)
		if progressModel, ok := updated.(progress.Model); ok {
			m.progressBar = progressModel
		}
		cmds = append(cmds, cmd)
	}

	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TeaModel) refreshLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	progressSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(m.formatProgressView())

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Process Information"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: cancel transfer")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		progressSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) formatProgressView() string {
	p := m.data

	var details string
	switch {
	case !p.HasStarted:
		details = "Waiting for transfer...\n"

	case !p.HasFinished:
		details = fmt.Sprintf(
			"Progress: %.2f%% (%s/%s)\n"+
				"Time: Started=%v, ETA=%v (%.1fmin left)\n"+
				"Speed: %s/s\n",
			p.ProgressPct,
			humanize.IBytes(uint64(p.DoneBytes)),  //nolint:gosec
			humanize.IBytes(uint64(p.TotalBytes)), //nolint:gosec
			p.StartTime.Format("15:04:05"),
			p.ETA.Format("15:04:05"),
			p.TimeLeft.Minutes(),
			humanize.IBytes(uint64(p.TransferSpeed)),
		)

	default:
		details = fmt.Sprintf(
			"Progress: %.2f%% (%s/%s)\n"+
				"Time: Started=%v, Finished=%v\n"+
				"Speed: %s/s\n",
			p.ProgressPct,
			humanize.IBytes(uint64(p.DoneBytes)),  //nolint:gosec
			humanize.IBytes(uint64(p.TotalBytes)), //nolint:gosec
			p.StartTime.Format("15:04:05"),
			p.FinishTime.Format("15:04:05"),
			humanize.IBytes(uint64(p.TransferSpeed)),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.fullWidthWithBorders).Render(m.title),
		"",
		m.progressBar.View(),
		"",
		infoStyle.Width(m.fullWidthWithBorders).Render(details),
	)
}
