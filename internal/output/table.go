package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/spiffcs/repohealth/internal/history"
	"github.com/spiffcs/repohealth/internal/score"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// displayWidth returns the visible width of a string in terminal columns,
// stripping ANSI escape sequences.
func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// padRight pads a string with spaces to reach the target visible width.
func padRight(s string, targetWidth int) string {
	width := displayWidth(s)
	if width >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-width)
}

// colorEnabled reports whether stdout is a terminal worth coloring.
func colorEnabled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// scoreColor picks a color for a 0-100 score.
func scoreColor(v float64) *color.Color {
	switch {
	case v >= 70:
		return color.New(color.FgGreen)
	case v >= 40:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// ScoreTable renders the score report as a terminal table: one row per
// category plus the weighted overall score.
func ScoreTable(w io.Writer, report score.Report) {
	const (
		colCategory = 20
		colScore    = 12
		colWeight   = 8
	)

	bold := color.New(color.Bold)
	if !colorEnabled() {
		color.NoColor = true
	}

	fmt.Fprintf(w, "%s  %s  %s\n",
		padRight(bold.Sprint("Category"), colCategory),
		padRight(bold.Sprint("Score"), colScore),
		bold.Sprint("Weight"))
	fmt.Fprintln(w, strings.Repeat("-", colCategory+colScore+colWeight+4))

	rows := []struct {
		name   string
		value  float64
		weight float64
	}{
		{"Execution", report.SubScores.Execution, report.Weights.Execution},
		{"Community", report.SubScores.Community, report.Weights.Community},
		{"Backlog", report.SubScores.Backlog, report.Weights.Backlog},
	}

	for _, row := range rows {
		scoreStr := scoreColor(row.value).Sprintf("%.2f/100", row.value)
		fmt.Fprintf(w, "%s  %s  %.0f%%\n",
			padRight(row.name, colCategory),
			padRight(scoreStr, colScore),
			row.weight*100)
	}

	fmt.Fprintln(w, strings.Repeat("-", colCategory+colScore+colWeight+4))
	overallStr := bold.Sprintf("%.2f/100", report.OverallScore)
	fmt.Fprintf(w, "%s  %s  100%%\n",
		padRight("Overall Score", colCategory),
		padRight(overallStr, colScore))
}

// HistoryTable renders recent score snapshots, oldest first.
func HistoryTable(w io.Writer, snapshots []history.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No score history recorded yet.")
		return
	}

	const (
		colWhen  = 18
		colRepo  = 26
		colScore = 9
	)

	bold := color.New(color.Bold)
	if !colorEnabled() {
		color.NoColor = true
	}

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		padRight(bold.Sprint("When"), colWhen),
		padRight(bold.Sprint("Repository"), colRepo),
		padRight(bold.Sprint("Overall"), colScore),
		padRight(bold.Sprint("Exec"), colScore),
		padRight(bold.Sprint("Comm"), colScore),
		bold.Sprint("Backlog"))

	for _, snap := range snapshots {
		overall := scoreColor(snap.OverallScore).Sprintf("%.1f", snap.OverallScore)
		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %.1f\n",
			padRight(snap.Timestamp.UTC().Format("2006-01-02 15:04"), colWhen),
			padRight(snap.Repository, colRepo),
			padRight(overall, colScore),
			padRight(fmt.Sprintf("%.1f", snap.ExecutionScore), colScore),
			padRight(fmt.Sprintf("%.1f", snap.CommunityScore), colScore),
			snap.BacklogScore)
	}
}
