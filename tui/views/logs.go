package views

import (
	"fmt"
	"strings"

	"homescout-tui/db"
	"homescout-tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var logLevels = []string{"ALL", "info", "warn", "error"}

type logsMsg struct {
	logs []db.ScrapeLog
}

type Logs struct {
	db            *db.Client
	width, height int
	logs          []db.ScrapeLog
	levelIdx      int
	scroll        int
}

func NewLogs(dbClient *db.Client) Logs {
	return Logs{db: dbClient}
}

func (v Logs) Init() tea.Cmd {
	return v.Refresh()
}

func (v Logs) Refresh() tea.Cmd {
	level := logLevels[v.levelIdx]
	return func() tea.Msg {
		logs, _ := v.db.GetRecentLogs(200, &level)
		return logsMsg{logs}
	}
}

func (v Logs) SetSize(w, h int) Logs {
	v.width = w
	v.height = h
	return v
}

func (v Logs) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case logsMsg:
		v.logs = msg.logs
		if v.scroll >= len(v.logs) {
			v.scroll = 0
		}

	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.scroll > 0 {
				v.scroll--
			}
		case "down", "j":
			if v.scroll < len(v.logs)-1 {
				v.scroll++
			}
		case "home", "g":
			v.scroll = 0
		case "f":
			v.levelIdx = (v.levelIdx + 1) % len(logLevels)
			v.scroll = 0
			return v, v.Refresh()
		}
	}
	return v, nil
}

func (v Logs) visibleRows() int {
	rows := 30
	if v.height > 4 {
		rows = v.height - 4
	}
	return rows
}

func (v Logs) View() string {
	header := styles.Title.Render("Daemon Logs") + "  " +
		styles.Muted.Render(fmt.Sprintf("[f] Level: %s", logLevels[v.levelIdx]))

	if len(v.logs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.Muted.Render("No log entries"))
	}

	visible := v.visibleRows()
	end := v.scroll + visible
	if end > len(v.logs) {
		end = len(v.logs)
	}

	var lines []string
	for _, l := range v.logs[v.scroll:end] {
		ts := styles.LogTimestamp.Render(l.Timestamp.Format("01-02 15:04:05"))

		levelStyle := styles.LogInfo
		switch strings.ToLower(l.Level) {
		case "error":
			levelStyle = styles.StatusError
		case "warn":
			levelStyle = styles.StatusPending
		}
		level := levelStyle.Render(fmt.Sprintf("%-5s", l.Level))

		lines = append(lines, fmt.Sprintf("%s %s %s", ts, level, truncate(l.Message, v.width-24)))
	}

	footer := styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scroll+1, end, len(v.logs)))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(lines, "\n"),
		footer,
	)
}
