package main

import (
	"fmt"
	"os"
	"time"

	"homescout-tui/db"
	"homescout-tui/styles"
	"homescout-tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

type tab int

const (
	tabDashboard tab = iota
	tabListings
	tabLogs
)

type model struct {
	db            *db.Client
	activeTab     tab
	width, height int
	notification  string
	notifyUntil   time.Time
	paused        bool

	dashboard views.Dashboard
	listings  views.Listings
	logs      views.Logs
}

type tickMsg time.Time
type logTickMsg time.Time

func initialModel(dbClient *db.Client, logPath string) model {
	return model{
		db:        dbClient,
		activeTab: tabDashboard,
		dashboard: views.NewDashboard(dbClient, logPath),
		listings:  views.NewListings(dbClient),
		logs:      views.NewLogs(dbClient),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.listings.Init(),
		m.logs.Init(),
		tickCmd(),
		logTickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func logTickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "d":
			m.activeTab = tabDashboard
		case "p":
			m.activeTab = tabListings
		case "l":
			m.activeTab = tabLogs
		case "tab":
			m.activeTab = (m.activeTab + 1) % 3
		case "r":
			m.notification = "Refreshed"
			m.notifyUntil = time.Now().Add(2 * time.Second)
			return m, m.refreshActive()
		case "s":
			if err := m.db.RefreshNow(); err == nil {
				m.notification = "Price check queued!"
				m.notifyUntil = time.Now().Add(2 * time.Second)
			}
		case "e":
			if err := m.db.RunEnrichment(); err == nil {
				m.notification = "Enrichment worker triggered!"
				m.notifyUntil = time.Now().Add(2 * time.Second)
			}
		case "x":
			if m.paused {
				if err := m.db.Resume(); err == nil {
					m.paused = false
					m.notification = "Scheduled refreshes resumed"
					m.notifyUntil = time.Now().Add(2 * time.Second)
				}
			} else {
				if err := m.db.Pause(); err == nil {
					m.paused = true
					m.notification = "Scheduled refreshes paused"
					m.notifyUntil = time.Now().Add(2 * time.Second)
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dashboard = m.dashboard.SetSize(msg.Width, msg.Height-4)
		m.listings = m.listings.SetSize(msg.Width, msg.Height-4)
		m.logs = m.logs.SetSize(msg.Width, msg.Height-4)

	case tickMsg:
		cmds = append(cmds, m.refreshActive(), tickCmd())

	case logTickMsg:
		cmds = append(cmds, m.dashboard.RefreshLog(), logTickCmd())
	}

	// Key messages go only to the active tab; data messages go everywhere so
	// the initial loads land.
	switch msg.(type) {
	case tea.KeyMsg:
		switch m.activeTab {
		case tabDashboard:
			newDashboard, cmd := m.dashboard.Update(msg)
			m.dashboard = newDashboard.(views.Dashboard)
			cmds = append(cmds, cmd)
		case tabListings:
			newListings, cmd := m.listings.Update(msg)
			m.listings = newListings.(views.Listings)
			cmds = append(cmds, cmd)
		case tabLogs:
			newLogs, cmd := m.logs.Update(msg)
			m.logs = newLogs.(views.Logs)
			cmds = append(cmds, cmd)
		}
	default:
		newDashboard, cmd1 := m.dashboard.Update(msg)
		m.dashboard = newDashboard.(views.Dashboard)
		cmds = append(cmds, cmd1)

		newListings, cmd2 := m.listings.Update(msg)
		m.listings = newListings.(views.Listings)
		cmds = append(cmds, cmd2)

		newLogs, cmd3 := m.logs.Update(msg)
		m.logs = newLogs.(views.Logs)
		cmds = append(cmds, cmd3)
	}

	return m, tea.Batch(cmds...)
}

func (m model) refreshActive() tea.Cmd {
	switch m.activeTab {
	case tabDashboard:
		return m.dashboard.Refresh()
	case tabListings:
		return m.listings.Refresh()
	case tabLogs:
		return m.logs.Refresh()
	}
	return nil
}

func (m model) View() string {
	tabs := m.renderTabs()
	content := m.renderContent()
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, tabs, content, statusBar)
}

func (m model) renderTabs() string {
	tabNames := []string{"Dashboard", "Listings", "Logs"}
	var rendered []string
	for i, name := range tabNames {
		if tab(i) == m.activeTab {
			rendered = append(rendered, styles.TabActive.Render(name))
		} else {
			rendered = append(rendered, styles.TabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m model) renderContent() string {
	switch m.activeTab {
	case tabDashboard:
		return m.dashboard.View()
	case tabListings:
		return m.listings.View()
	case tabLogs:
		return m.logs.View()
	}
	return ""
}

func (m model) renderStatusBar() string {
	left := "d Dash  p Listings  l Logs  r Refresh  s Check prices  e Enrich  x Pause  q Quit"
	if m.paused {
		left = "d Dash  p Listings  l Logs  r Refresh  s Check prices  e Enrich  x Resume  q Quit"
	}
	right := ""
	if time.Now().Before(m.notifyUntil) {
		right = styles.Notification.Render(m.notification)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	return styles.StatusBar.Render(left) + lipgloss.NewStyle().Width(gap).Render("") + right
}

func main() {
	_ = godotenv.Load() // Load .env if present

	postgresURL := os.Getenv("DATABASE_URL")
	if postgresURL == "" {
		fmt.Fprintf(os.Stderr, "Error: DATABASE_URL environment variable is required\n")
		os.Exit(1)
	}

	sqlitePath := os.Getenv("DB_PATH")
	if sqlitePath == "" {
		sqlitePath = "homescout.db"
	}

	logPath := os.Getenv("LOG_PATH")
	if logPath == "" {
		logPath = "daemon.log"
	}

	userID := os.Getenv("HOMESCOUT_USER")
	if userID == "" {
		userID = "local"
	}

	dbClient, err := db.New(postgresURL, sqlitePath, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	p := tea.NewProgram(
		initialModel(dbClient, logPath),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
