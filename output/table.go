package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"homescout/models"
)

var (
	greatColor = color.New(color.FgGreen, color.Bold) // 80+
	goodColor  = color.New(color.FgCyan)              // 60-79
	fairColor  = color.New(color.FgYellow)            // 40-59
	poorColor  = color.New(color.FgRed)               // below 40
)

// ScoreLabel returns a colored score band label for console output.
func ScoreLabel(score int) string {
	switch {
	case score >= 80:
		return greatColor.Sprint("GREAT")
	case score >= 60:
		return goodColor.Sprint("GOOD")
	case score >= 40:
		return fairColor.Sprint("FAIR")
	default:
		return poorColor.Sprint("POOR")
	}
}

// WriteTable renders the ranked listings as a console table.
func WriteTable(w io.Writer, listings []models.Listing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(w, "No listings. Add one with -add <zillow url>.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Score", "", "Address", "Price", "Beds", "Baths", "Sqft", "Commute", "Flood", "Rating"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, l := range listings {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(l.TotalScore),
			ScoreLabel(l.TotalScore),
			truncate(l.Address, 40),
			l.Price,
			formatFloat(l.Beds),
			formatFloat(l.Baths),
			l.Sqft,
			formatMinutes(l.CommuteAM),
			truncate(l.FloodZone, 12),
			formatRating(l.UserRating),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing %d listings\n", len(listings))
	return err
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	if *v == float64(int(*v)) {
		return strconv.Itoa(int(*v))
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatMinutes(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%dm", *v)
}

func formatRating(r *models.Rating) string {
	if r == nil {
		return "-"
	}
	switch *r {
	case models.RatingYes:
		return greatColor.Sprint("yes")
	case models.RatingNo:
		return poorColor.Sprint("no")
	default:
		return fairColor.Sprint(string(*r))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
