package styles

import "github.com/charmbracelet/lipgloss"

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)

	TabInactive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2)

	StatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	Notification = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	StatValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231"))

	StatLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	CardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	DetailBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 1)

	LogBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	LogTimestamp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	LogInfo = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	TableSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	StatusSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	StatusError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	StatusPending = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	RatingYes = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	RatingNo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	RatingMaybe = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)
