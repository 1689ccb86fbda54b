package views

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"homescout-tui/db"
	"homescout-tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashboardDataMsg struct {
	totals db.Totals
	runs   []db.ScrapeRun
}

type logTailMsg struct {
	lines        []string
	modTime      time.Time
	daemonActive bool
}

type Dashboard struct {
	db            *db.Client
	width, height int
	totals        db.Totals
	runs          []db.ScrapeRun
	logLines      []string
	logPath       string
	logScroll     int       // scroll offset (0 = bottom/newest)
	logViewport   int       // visible lines
	logBuffer     int       // total lines to keep
	logModTime    time.Time // last modification time of log file
	daemonActive  bool      // whether systemd service is active
}

func NewDashboard(dbClient *db.Client, logPath string) Dashboard {
	if logPath == "" {
		logPath = "daemon.log"
	}
	return Dashboard{
		db:          dbClient,
		logPath:     logPath,
		logViewport: 30,
		logBuffer:   200,
	}
}

func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.Refresh(), d.tailLog())
}

func (d Dashboard) Refresh() tea.Cmd {
	return func() tea.Msg {
		totals, _ := d.db.GetTotals()
		runs, _ := d.db.GetRecentRuns(10)
		return dashboardDataMsg{totals, runs}
	}
}

func (d Dashboard) RefreshLog() tea.Cmd {
	return d.tailLog()
}

func (d Dashboard) tailLog() tea.Cmd {
	return func() tea.Msg {
		lines, modTime := readLastLines(d.logPath, d.logBuffer)
		active := isDaemonActive()
		return logTailMsg{lines, modTime, active}
	}
}

func isDaemonActive() bool {
	out, err := exec.Command("systemctl", "is-active", "homescout").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "active"
}

func readLastLines(path string, n int) ([]string, time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return []string{"(no log file)"}, time.Time{}
	}
	modTime := info.ModTime()

	f, err := os.Open(path)
	if err != nil {
		return []string{"(no log file)"}, time.Time{}
	}
	defer f.Close()

	var allLines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}

	if len(allLines) == 0 {
		return []string{"(empty log)"}, modTime
	}

	start := len(allLines) - n
	if start < 0 {
		start = 0
	}
	return allLines[start:], modTime
}

func (d Dashboard) SetSize(w, h int) Dashboard {
	d.width = w
	d.height = h
	return d
}

func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.totals = msg.totals
		d.runs = msg.runs
		return d, d.tailLog()
	case logTailMsg:
		d.logLines = msg.lines
		d.logModTime = msg.modTime
		d.daemonActive = msg.daemonActive
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height - 4
	case tea.KeyMsg:
		maxScroll := len(d.logLines) - d.logViewport
		if maxScroll < 0 {
			maxScroll = 0
		}
		switch msg.String() {
		case "up", "k":
			d.logScroll++
			if d.logScroll > maxScroll {
				d.logScroll = maxScroll
			}
		case "down", "j":
			d.logScroll--
			if d.logScroll < 0 {
				d.logScroll = 0
			}
		case "pgup":
			d.logScroll += 10
			if d.logScroll > maxScroll {
				d.logScroll = maxScroll
			}
		case "pgdown":
			d.logScroll -= 10
			if d.logScroll < 0 {
				d.logScroll = 0
			}
		case "home":
			d.logScroll = maxScroll
		case "end":
			d.logScroll = 0
		}
	}
	return d, nil
}

func (d Dashboard) View() string {
	statCards := d.renderStatCards()
	runsTable := d.renderRunsTable()
	logTail := d.renderLogTail()

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Dashboard"),
		statCards,
		"",
		styles.Title.Render("Recent Runs"),
		runsTable,
		"",
		logTail,
	)
}

func (d Dashboard) renderStatCards() string {
	cards := []string{
		d.renderStatCard("Listings", fmt.Sprintf("%d", d.totals.Listings)),
		d.renderStatCard("Yes", fmt.Sprintf("%d", d.totals.RatedYes)),
		d.renderStatCard("Maybe", fmt.Sprintf("%d", d.totals.RatedMaybe)),
		d.renderStatCard("No", fmt.Sprintf("%d", d.totals.RatedNo)),
		d.renderStatCard("Price Cuts", fmt.Sprintf("%d", d.totals.PriceCuts)),
		d.renderStatCard("Enrich Q", fmt.Sprintf("%d", d.totals.PendingEnrichment)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (d Dashboard) renderStatCard(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.StatValue.Render(value),
		styles.StatLabel.Render(label),
	)
	return styles.CardBorder.Width(14).Render(content)
}

func (d Dashboard) renderRunsTable() string {
	if len(d.runs) == 0 {
		return styles.Muted.Render("No runs yet")
	}

	header := fmt.Sprintf("%-10s %-10s %-10s %8s %5s %6s %6s",
		"Kind", "Status", "Started", "Checked", "New", "Cuts", "Errors")
	rows := styles.TableHeader.Render(header) + "\n"

	for _, r := range d.runs {
		statusStyle := styles.StatusPending
		switch r.Status {
		case "completed":
			statusStyle = styles.StatusSuccess
		case "failed":
			statusStyle = styles.StatusError
		}

		started := r.StartedAt.Format("15:04:05")
		row := fmt.Sprintf("%-10s %s %-10s %8d %5d %6d %6d",
			truncate(r.Kind, 10),
			statusStyle.Render(fmt.Sprintf("%-10s", r.Status)),
			started,
			r.ListingsChecked,
			r.ListingsNew,
			r.PriceChanges,
			r.ErrorsCount,
		)
		rows += row + "\n"
	}
	return rows
}

func (d Dashboard) renderLogTail() string {
	if len(d.logLines) == 0 {
		content := styles.Muted.Render("(waiting for logs...)")
		return styles.LogBox.Width(d.width - 4).Render(content)
	}

	// Visible window, measured from the end with the scroll offset.
	total := len(d.logLines)
	endIdx := total - d.logScroll
	startIdx := endIdx - d.logViewport
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > total {
		endIdx = total
	}

	visibleLines := d.logLines[startIdx:endIdx]
	maxLineWidth := d.width - 8

	var lines []string
	for _, line := range visibleLines {
		lines = append(lines, d.styleLogLine(line, maxLineWidth))
	}

	content := strings.Join(lines, "\n")

	scrollInfo := ""
	if !d.daemonActive {
		scrollInfo = styles.StatusError.Render(" ● STOPPED ")
	} else if d.logScroll > 0 {
		scrollInfo = styles.StatusPending.Render(fmt.Sprintf(" ↑%d ", d.logScroll))
	} else {
		scrollInfo = styles.StatusSuccess.Render(" ● LIVE ")
	}

	header := styles.Title.Render("Live Log") + scrollInfo +
		styles.Muted.Render(fmt.Sprintf("[%d-%d/%d]", startIdx+1, endIdx, total))

	boxContent := header + "\n" + content
	return styles.LogBox.Width(d.width - 4).Render(boxContent)
}

func (d Dashboard) styleLogLine(line string, maxWidth int) string {
	line = truncate(line, maxWidth)

	// Timestamp prefix looks like 2024/01/25 10:30:45
	if len(line) > 19 && (line[4] == '/' || line[10] == ' ') {
		timestamp := line[:19]
		rest := line[19:]

		styledTs := styles.LogTimestamp.Render(timestamp)

		if strings.Contains(rest, "ERROR") || strings.Contains(rest, "error") {
			return styledTs + styles.StatusError.Render(rest)
		} else if strings.Contains(rest, "WARN") || strings.Contains(rest, "warn") {
			return styledTs + styles.StatusPending.Render(rest)
		} else if strings.Contains(rest, "INFO") || strings.Contains(rest, "info") {
			return styledTs + styles.LogInfo.Render(rest)
		}
		return styledTs + rest
	}

	if strings.Contains(line, "ERROR") || strings.Contains(line, "error") {
		return styles.StatusError.Render(line)
	} else if strings.Contains(line, "WARN") || strings.Contains(line, "warn") {
		return styles.StatusPending.Render(line)
	}
	return line
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return s[:max-1] + "…"
}
