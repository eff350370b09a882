package lunarcrush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `# Bitcoin Sentiment

**Current Value**: 72%
**Daily Average**: 68%
**1 Week**: 65% (+7%)
**1 Month**: 60% (+12%)
**6 Months**: 55% (-3%)
**1 Year**: 58% (+14%)
**1-Year High**: 82% on 2026-03-14
**1-Year Low**: 31% on 2025-11-02

**Most Supportive Themes**
- **ETF inflows:** (18%) Institutional demand keeps climbing.
- **Halving narrative:** (11%) Supply squeeze chatter.

**Most Critical Themes**
- **Fee spikes:** (9%) Users complain about congestion.

Network engagement breakdown:
| Network | Positive | % | Neutral | % | Negative | % |
|---------|----------|---|---------|---|----------|---|
| X | 12,400 | 61% | 5,100 | 25% | 2,800 | 14% |
| Reddit | 3,200 | 48% | 2,900 | 43% | 600 | 9% |
`

func TestParseReport(t *testing.T) {
	report, ok := parseReport(sampleReport)
	require.True(t, ok)

	assert.InDelta(t, 0.72, report.CurrentValue, 1e-9)
	assert.InDelta(t, 0.68, report.DailyAverage, 1e-9)
	assert.InDelta(t, 0.65, report.OneWeek.Value, 1e-9)
	assert.InDelta(t, 0.07, report.OneWeek.Change, 1e-9)
	assert.InDelta(t, -0.03, report.SixMonths.Change, 1e-9)
	assert.InDelta(t, 0.82, report.YearHigh, 1e-9)
	assert.Equal(t, "2026-03-14", report.YearHighDate)
	assert.InDelta(t, 0.31, report.YearLow, 1e-9)
	assert.Equal(t, "2025-11-02", report.YearLowDate)

	require.Len(t, report.SupportiveThemes, 2)
	assert.Equal(t, "ETF inflows", report.SupportiveThemes[0].Name)
	assert.InDelta(t, 0.18, report.SupportiveThemes[0].Weight, 1e-9)
	assert.Equal(t, "Institutional demand keeps climbing.", report.SupportiveThemes[0].Description)

	require.Len(t, report.CriticalThemes, 1)
	assert.Equal(t, "Fee spikes", report.CriticalThemes[0].Name)

	require.Contains(t, report.NetworkEngagement, "X")
	x := report.NetworkEngagement["X"]
	assert.Equal(t, "12400", x.Positive)
	assert.InDelta(t, 0.61, x.PositivePct, 1e-9)
	assert.Equal(t, "2800", x.Negative)
	assert.NotContains(t, report.NetworkEngagement, "Network")
}

func TestParseReportNoData(t *testing.T) {
	_, ok := parseReport("No sentiment data available for this topic.\n")
	assert.False(t, ok)
}

func TestParsePercent(t *testing.T) {
	assert.InDelta(t, 0.72, parsePercent("72%"), 1e-9)
	assert.InDelta(t, 0.035, parsePercent("(+3.5%)"), 1e-9)
	assert.InDelta(t, -0.02, parsePercent("(-2%)"), 1e-9)
	assert.Equal(t, 0.0, parsePercent("n/a"))
}
