package watch

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the identity table columns.
func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Identity", Width: 32},
		{Title: "In use", Width: 8},
		{Title: "Available", Width: 10},
		{Title: "Capacity", Width: 9},
		{Title: "State", Width: 10},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts identity pool statuses into table rows.
func rowsForState(state State) []table.Row {
	rows := make([]table.Row, 0, len(state.Snapshot.Identities))
	for _, pool := range state.Snapshot.Identities {
		label := "ok"
		if pool.Exhausted {
			label = "exhausted"
		}
		rows = append(rows, table.Row{
			pool.Identity,
			strconv.Itoa(pool.InUse),
			strconv.Itoa(pool.Available),
			strconv.Itoa(pool.Capacity),
			label,
		})
	}
	return rows
}
