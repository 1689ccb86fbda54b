package views

import (
	"fmt"
	"strings"

	"homescout-tui/db"
	"homescout-tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type listingsMsg struct {
	listings []db.Listing
	total    int
}

type Listings struct {
	db            *db.Client
	width, height int
	listings      []db.Listing
	selectedRow   int
	dbPage        int // current database page (0-indexed)
	dbPageSize    int // items per database page
	total         int // total listings in DB
}

func NewListings(dbClient *db.Client) Listings {
	return Listings{db: dbClient, dbPageSize: 100}
}

func (v Listings) Init() tea.Cmd {
	return v.Refresh()
}

func (v Listings) Refresh() tea.Cmd {
	return func() tea.Msg {
		listings, _ := v.db.GetListings(v.dbPageSize, v.dbPage*v.dbPageSize)
		total, _ := v.db.GetListingCount()
		return listingsMsg{listings, total}
	}
}

func (v Listings) SetSize(w, h int) Listings {
	v.width = w
	v.height = h
	return v
}

func (v Listings) GetSelectedURL() string {
	if v.selectedRow < len(v.listings) {
		return v.listings[v.selectedRow].URL
	}
	return ""
}

func (v Listings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listingsMsg:
		v.listings = msg.listings
		v.total = msg.total
		if v.selectedRow >= len(v.listings) {
			v.selectedRow = 0
		}

	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selectedRow > 0 {
				v.selectedRow--
			}
		case "down", "j":
			if v.selectedRow < len(v.listings)-1 {
				v.selectedRow++
			}
		case "pgdown", "ctrl+d":
			v.selectedRow += 10
			if v.selectedRow >= len(v.listings) {
				v.selectedRow = len(v.listings) - 1
			}
			if v.selectedRow < 0 {
				v.selectedRow = 0
			}
		case "pgup", "ctrl+u":
			v.selectedRow -= 10
			if v.selectedRow < 0 {
				v.selectedRow = 0
			}
		case "home", "g":
			v.selectedRow = 0
		case "end", "G":
			if len(v.listings) > 0 {
				v.selectedRow = len(v.listings) - 1
			}
		case "[":
			if v.dbPage > 0 {
				v.dbPage--
				v.selectedRow = 0
				return v, v.Refresh()
			}
		case "]":
			if v.dbPage < v.totalPages()-1 {
				v.dbPage++
				v.selectedRow = 0
				return v, v.Refresh()
			}
		}
	}
	return v, nil
}

func (v Listings) visibleRows() int {
	rows := 25
	if v.height > 0 {
		rows = (v.height * 60) / 100
		if rows < 10 {
			rows = 10
		}
	}
	return rows
}

func (v Listings) totalPages() int {
	if v.dbPageSize == 0 || v.total == 0 {
		return 1
	}
	return (v.total + v.dbPageSize - 1) / v.dbPageSize
}

func (v Listings) View() string {
	globalPos := v.dbPage*v.dbPageSize + v.selectedRow + 1
	position := fmt.Sprintf("  %d/%d", globalPos, v.total)
	pageInfo := fmt.Sprintf("  Page %d/%d", v.dbPage+1, v.totalPages())

	header := styles.Title.Render("Listings") +
		styles.StatValue.Render(position) +
		styles.StatLabel.Render(pageInfo) +
		"  " + styles.Muted.Render("[[ ]] Prev/Next page")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.renderTable(),
		"",
		v.renderDetail(),
	)
}

func (v Listings) renderTable() string {
	if len(v.listings) == 0 {
		return styles.Muted.Render("No listings yet. Add one with the API or the CLI.")
	}

	header := fmt.Sprintf("%-38s %10s %4s %4s %8s %7s %-10s %-6s",
		"Address", "Price", "Bed", "Bath", "SqFt", "Commute", "Flood", "Rating")
	rows := styles.TableHeader.Render(header) + "\n"

	visible := v.visibleRows()
	scrollOffset := 0
	if v.selectedRow >= visible {
		scrollOffset = v.selectedRow - visible + 1
	}
	endRow := scrollOffset + visible
	if endRow > len(v.listings) {
		endRow = len(v.listings)
	}

	for i := scrollOffset; i < endRow; i++ {
		l := v.listings[i]

		price := "—"
		if l.Price != "" {
			price = l.Price
		}
		commute := "—"
		if l.CommuteAM > 0 {
			commute = fmt.Sprintf("%dm", l.CommuteAM)
		}

		row := fmt.Sprintf("%-38s %10s %4s %4s %8s %7s %-10s %-6s",
			truncate(l.Address, 38),
			truncate(price, 10),
			formatNum(l.Beds),
			formatNum(l.Baths),
			truncate(l.Sqft, 8),
			commute,
			truncate(l.FloodZone, 10),
			l.Rating,
		)

		if i == v.selectedRow {
			rows += styles.TableSelected.Render(row) + "\n"
		} else if l.Rating == "no" {
			rows += styles.Muted.Render(row) + "\n"
		} else {
			rows += row + "\n"
		}
	}

	if len(v.listings) > visible {
		rows += styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", scrollOffset+1, endRow, len(v.listings)))
	}

	return rows
}

func (v Listings) renderDetail() string {
	if v.selectedRow >= len(v.listings) {
		return ""
	}
	l := v.listings[v.selectedRow]

	factBox := styles.CardBorder.Width(v.width/2 - 2).Render(
		styles.Title.Render("Details") + "\n" + v.renderFacts(l),
	)
	aiBox := styles.DetailBorder.Width(v.width/2 - 2).Render(
		styles.Title.Render("Notes & Analysis") + "\n" + v.renderNotes(l),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, factBox, aiBox)
}

func (v Listings) renderFacts(l db.Listing) string {
	lines := []string{
		styles.StatLabel.Render("Status: ") + l.Status,
	}

	if l.Neighborhood != "" {
		lines = append(lines, styles.StatLabel.Render("Area: ")+l.Neighborhood)
	}
	if l.DaysOnMarket > 0 {
		lines = append(lines, styles.StatLabel.Render("On market: ")+fmt.Sprintf("%d days", l.DaysOnMarket))
	}
	if l.PriceCutPercent > 0 {
		cut := fmt.Sprintf("-%.1f%%", l.PriceCutPercent)
		if l.PriceCutDate != nil {
			cut += " (" + relativeTime(*l.PriceCutDate) + ")"
		}
		lines = append(lines, styles.StatLabel.Render("Price cut: ")+styles.StatusSuccess.Render(cut))
	}
	if l.ElementarySchool > 0 || l.MiddleSchool > 0 || l.HighSchool > 0 {
		lines = append(lines, styles.StatLabel.Render("Schools: ")+
			fmt.Sprintf("E %d/10  M %d/10  H %d/10", l.ElementarySchool, l.MiddleSchool, l.HighSchool))
	}

	if l.Description != "" {
		desc := l.Description
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		lines = append(lines, "")
		lines = append(lines, wrapText(desc, v.width/2-6)...)
	}

	lines = append(lines, "", styles.Muted.Render(truncate(l.URL, v.width/2-6)))
	return strings.Join(lines, "\n")
}

func (v Listings) renderNotes(l db.Listing) string {
	var lines []string

	switch l.Rating {
	case "yes":
		lines = append(lines, styles.RatingYes.Render("★ YES"))
	case "no":
		lines = append(lines, styles.RatingNo.Render("✗ NO"))
	case "maybe":
		lines = append(lines, styles.RatingMaybe.Render("? MAYBE"))
	default:
		lines = append(lines, styles.Muted.Render("(unrated)"))
	}

	if l.Notes != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(l.Notes, v.width/2-6)...)
	}

	if l.AISummary != "" {
		lines = append(lines, "", styles.StatLabel.Render("AI:"))
		lines = append(lines, wrapText(l.AISummary, v.width/2-6)...)
	}

	return strings.Join(lines, "\n")
}

func formatNum(f float64) string {
	if f == 0 {
		return "—"
	}
	if f == float64(int(f)) {
		return fmt.Sprintf("%d", int(f))
	}
	return fmt.Sprintf("%.1f", f)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		width = 40
	}
	var lines []string
	words := strings.Fields(text)
	var line string
	for _, word := range words {
		if len(line)+len(word)+1 > width {
			lines = append(lines, line)
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
