package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/poller"
)

var palette = struct {
	Green lipgloss.AdaptiveColor
	Amber lipgloss.AdaptiveColor
	Red   lipgloss.AdaptiveColor
	Muted lipgloss.AdaptiveColor
}{
	Green: lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF00"},
	Amber: lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFB000"},
	Red:   lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF0000"},
	Muted: lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"},
}

var (
	statusStyle = map[poller.Status]lipgloss.Style{
		poller.StatusIdle:     lipgloss.NewStyle().Foreground(palette.Muted),
		poller.StatusLoading:  lipgloss.NewStyle().Foreground(palette.Muted),
		poller.StatusTracking: lipgloss.NewStyle().Foreground(palette.Green).Bold(true),
		poller.StatusQuiet:    lipgloss.NewStyle().Foreground(palette.Muted),
		poller.StatusDegraded: lipgloss.NewStyle().Foreground(palette.Amber).Bold(true),
		poller.StatusOffline:  lipgloss.NewStyle().Foreground(palette.Red).Bold(true),
	}
	militaryStyle  = lipgloss.NewStyle().Foreground(palette.Red)
	loiteringStyle = lipgloss.NewStyle().Foreground(palette.Amber)
	plainStyle     = lipgloss.NewStyle()
	headerStyle    = lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false)
)

// renderStatus formats the one-line connection summary.
func renderStatus(s poller.Snapshot) string {
	var b strings.Builder
	b.WriteString(statusStyle[s.Status].Render(strings.ToUpper(string(s.Status))))
	if s.Data != nil {
		fmt.Fprintf(&b, "  %d aircraft", len(s.Data.Aircraft))
	}
	if !s.LastUpdate.IsZero() {
		fmt.Fprintf(&b, "  updated %s", s.LastUpdate.Local().Format(time.TimeOnly))
	}
	if s.Err != "" {
		b.WriteString("  " + militaryStyle.Render(s.Err))
	}
	return b.String()
}

// aircraftStyle picks the map marker colour: loitering wins over military.
func aircraftStyle(c domain.Classification) lipgloss.Style {
	switch {
	case c.Loitering:
		return loiteringStyle
	case c.IsMilitary:
		return militaryStyle
	default:
		return plainStyle
	}
}

func renderAircraft(a *domain.Aircraft, c domain.Classification) string {
	callsign := a.Callsign
	if callsign == "" {
		callsign = "-"
	}
	alt := "-"
	switch {
	case a.Altitude.OnGround:
		alt = "ground"
	case a.Altitude.Known:
		alt = fmt.Sprintf("%.0f ft", a.Altitude.Feet)
	}
	gs := "-"
	if a.GroundSpeed != nil {
		gs = fmt.Sprintf("%.0f kt", *a.GroundSpeed)
	}
	var flags []string
	if c.IsMilitary {
		flags = append(flags, "MIL")
	}
	if c.Loitering {
		flags = append(flags, "LOITER")
	}
	line := fmt.Sprintf("%-8s %-8s %-6s %9s %7s  %s", a.Hex, callsign, a.TypeCode, alt, gs, strings.Join(flags, ","))
	return aircraftStyle(c).Render(strings.TrimRight(line, " "))
}

// renderReport prints the status line, up to limit aircraft (military and loitering first), and
// the hotspot counts.
func renderReport(s poller.Snapshot, classifier *domain.Classifier, limit int) string {
	lines := []string{renderStatus(s)}
	if s.Data == nil {
		return lines[0]
	}

	aircraft := s.Data.ToDomain()
	classes := make([]domain.Classification, len(aircraft))
	order := make([]int, len(aircraft))
	for i := range aircraft {
		classes[i] = classifier.Classify(&aircraft[i])
		order[i] = i
	}
	rank := func(c domain.Classification) int {
		switch {
		case c.Loitering:
			return 0
		case c.IsMilitary:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return rank(classes[order[i]]) < rank(classes[order[j]]) })

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	if len(order) > 0 {
		lines = append(lines, headerStyle.Render(fmt.Sprintf("%-8s %-8s %-6s %9s %7s", "HEX", "CALLSIGN", "TYPE", "ALT", "GS")))
		for _, i := range order {
			lines = append(lines, renderAircraft(&aircraft[i], classes[i]))
		}
	}

	counts := domain.HotspotCounts(aircraft)
	var hs []string
	for _, h := range domain.Hotspots() {
		hs = append(hs, fmt.Sprintf("%s %d", h.Name, counts[h.Key]))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(palette.Muted).Render(strings.Join(hs, " | ")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
