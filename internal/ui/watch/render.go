package watch

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top status line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Admission watch"
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	line += " | Polls: " + strconv.Itoa(state.Polls)
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderLimits renders the configured limits line.
func renderLimits(state State, noColor bool) string {
	if !state.HaveData {
		return stylize("Waiting for first snapshot...", noColor, lipgloss.Color("242"))
	}
	limits := state.Snapshot.Limits
	line := "Limits: " + strconv.Itoa(limits.PerMinute) + "/min " +
		strconv.Itoa(limits.PerHour) + "/hour" +
		" | Concurrency: global " + strconv.Itoa(limits.MaxGlobal) +
		", per identity " + strconv.Itoa(limits.MaxPerIdentity)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderGlobal renders the global pool line.
func renderGlobal(state State, noColor bool) string {
	if !state.HaveData {
		return ""
	}
	global := state.Snapshot.Global
	line := "Global pool: " + strconv.Itoa(global.Available) + "/" + strconv.Itoa(global.Capacity) + " available"
	color := lipgloss.Color("240")
	if global.Exhausted {
		line += " (exhausted)"
		color = lipgloss.Color("196")
	}
	return stylize(line, noColor, color)
}

// renderFooter renders the freshness line.
func renderFooter(state State, noColor bool) string {
	if state.LastError != "" {
		return stylize("Poll error: "+state.LastError, noColor, lipgloss.Color("196"))
	}
	if state.UpdatedAt.IsZero() {
		return ""
	}
	return stylize("Updated "+state.UpdatedAt.Format("15:04:05")+" | q to quit", noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
