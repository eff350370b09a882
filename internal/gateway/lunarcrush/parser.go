package lunarcrush

import (
	"strconv"
	"strings"
)

// Window is a sentiment value over a trailing period plus its change versus
// the preceding period. Both are fractions in [0, 1] (changes may be
// negative).
type Window struct {
	Value  float64
	Change float64
}

// Theme is a narrative driving sentiment, with its contribution weight.
type Theme struct {
	Name        string
	Weight      float64
	Description string
}

// NetworkEngagement is the per-network post breakdown from the report table.
// Counts are kept as strings because the source formats them with magnitude
// suffixes ("1.2K").
type NetworkEngagement struct {
	Positive    string
	PositivePct float64
	Neutral     string
	NeutralPct  float64
	Negative    string
	NegativePct float64
}

// DetailedSentiment is the fully parsed sentiment report for one symbol.
type DetailedSentiment struct {
	CurrentValue float64
	DailyAverage float64
	OneWeek      Window
	OneMonth     Window
	SixMonths    Window
	OneYear      Window
	YearHigh     float64
	YearHighDate string
	YearLow      float64
	YearLowDate  string

	SupportiveThemes  []Theme
	CriticalThemes    []Theme
	NetworkEngagement map[string]NetworkEngagement
}

// parsePercent converts a percentage token ("72%", "(+3.5%)") to a fraction.
// Unparseable tokens yield 0.
func parsePercent(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v / 100
}

// parseWindow parses "72% (+3%)" into a Window.
func parseWindow(s string) Window {
	parts := strings.Fields(s)
	w := Window{}
	if len(parts) > 0 {
		w.Value = parsePercent(parts[0])
	}
	if len(parts) > 1 {
		w.Change = parsePercent(parts[1])
	}
	return w
}

// parseExtreme parses "82% on 2025-03-14" into a value and a date.
func parseExtreme(s string) (float64, string) {
	value, date, ok := strings.Cut(s, " on ")
	if !ok {
		return parsePercent(s), ""
	}
	return parsePercent(value), strings.TrimSpace(date)
}

// parseTheme parses a "- **Name:** (12%) description" bullet.
func parseTheme(line string) (Theme, bool) {
	rest := strings.TrimPrefix(line, "- **")
	name, rest, ok := strings.Cut(rest, ":**")
	if !ok {
		return Theme{}, false
	}

	theme := Theme{Name: strings.TrimSpace(name)}

	open := strings.Index(rest, "(")
	end := strings.Index(rest, "%)")
	if open >= 0 && end > open {
		theme.Weight = parsePercent(rest[open+1 : end])
		theme.Description = strings.TrimSpace(rest[end+2:])
	} else {
		theme.Description = strings.TrimSpace(rest)
	}

	return theme, true
}

type themeSection int

const (
	sectionNone themeSection = iota
	sectionSupportive
	sectionCritical
	sectionNetwork
)

// parseReport parses the markdown-style sentiment report. The second return
// value is false when the report carries no "Current Value" line, meaning
// the provider has no sentiment data for the topic.
func parseReport(text string) (DetailedSentiment, bool) {
	report := DetailedSentiment{
		NetworkEngagement: make(map[string]NetworkEngagement),
	}
	hasCurrent := false
	section := sectionNone

	var tableRows []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "**Current Value**:"):
			report.CurrentValue = parsePercent(line[len("**Current Value**:"):])
			hasCurrent = true
		case strings.HasPrefix(line, "**Daily Average**:"):
			report.DailyAverage = parsePercent(line[len("**Daily Average**:"):])
		case strings.HasPrefix(line, "**1 Week**:"):
			report.OneWeek = parseWindow(line[len("**1 Week**:"):])
		case strings.HasPrefix(line, "**1 Month**:"):
			report.OneMonth = parseWindow(line[len("**1 Month**:"):])
		case strings.HasPrefix(line, "**6 Months**:"):
			report.SixMonths = parseWindow(line[len("**6 Months**:"):])
		case strings.HasPrefix(line, "**1 Year**:"):
			report.OneYear = parseWindow(line[len("**1 Year**:"):])
		case strings.HasPrefix(line, "**1-Year High**:"):
			report.YearHigh, report.YearHighDate = parseExtreme(line[len("**1-Year High**:"):])
		case strings.HasPrefix(line, "**1-Year Low**:"):
			report.YearLow, report.YearLowDate = parseExtreme(line[len("**1-Year Low**:"):])
		case strings.HasPrefix(line, "**Most Supportive Themes**"):
			section = sectionSupportive
		case strings.HasPrefix(line, "**Most Critical Themes**"):
			section = sectionCritical
		case strings.HasPrefix(line, "Network engagement breakdown:"):
			section = sectionNetwork
		case section == sectionSupportive && strings.HasPrefix(line, "- **"):
			if theme, ok := parseTheme(line); ok {
				report.SupportiveThemes = append(report.SupportiveThemes, theme)
			}
		case section == sectionCritical && strings.HasPrefix(line, "- **"):
			if theme, ok := parseTheme(line); ok {
				report.CriticalThemes = append(report.CriticalThemes, theme)
			}
		case section == sectionNetwork && strings.HasPrefix(line, "|"):
			tableRows = append(tableRows, line)
		}
	}

	parseNetworkTable(tableRows, report.NetworkEngagement)

	return report, hasCurrent
}

// parseNetworkTable fills engagement from rows like
// "| X | 1.2K | 60% | 500 | 25% | 300 | 15% |". Header and separator rows
// are skipped.
func parseNetworkTable(rows []string, out map[string]NetworkEngagement) {
	for _, row := range rows {
		cells := strings.Split(row, "|")
		if len(cells) != 8 {
			continue
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		network := cells[1]
		if network == "" || network == "Network" || strings.HasPrefix(network, "-") {
			continue
		}

		out[network] = NetworkEngagement{
			Positive:    strings.ReplaceAll(cells[2], ",", ""),
			PositivePct: parsePercent(cells[3]),
			Neutral:     strings.ReplaceAll(cells[4], ",", ""),
			NeutralPct:  parsePercent(cells[5]),
			Negative:    strings.ReplaceAll(cells[6], ",", ""),
			NegativePct: parsePercent(cells[7]),
		}
	}
}
