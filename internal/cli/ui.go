package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// out is where human-facing output goes.
var out io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(out)
}

// =============================================================================
// Run Summaries
// =============================================================================

// printStats prints run counts on a single line followed by the cache status.
func printStats(s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
	}
	if s.Subgraphs > 0 {
		parts = append(parts, fmt.Sprintf("%d subgraphs", s.Subgraphs))
	}
	if s.Moves > 0 {
		parts = append(parts, fmt.Sprintf("%d moved", s.Moves))
	}
	if s.Groups > 0 {
		parts = append(parts, fmt.Sprintf("%d groups", s.Groups))
	}
	fmt.Fprintln(out, "  "+joinDim(parts)+StyleDim.Render(" · ")+cacheLabel(cached))
}

// printCacheInfo prints one cache status per stage.
func printCacheInfo(ci pipeline.CacheInfo) {
	parts := []string{
		"partition " + cacheLabel(ci.PartitionHit),
		"classify " + cacheLabel(ci.ClassifyHit),
		"merge " + cacheLabel(ci.MergeHit),
		"layout " + cacheLabel(ci.LayoutHit),
	}
	fmt.Fprintln(out, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func printReports(reports []category.RuleReport) {
	for _, r := range reports {
		line := fmt.Sprintf("%s: %s %s %s, %d of %d moved", r.Rule, r.Origin, iconArrow, r.Destination, r.Moved(), r.Origins)
		if r.Blocked {
			line += " (blocked by policy)"
		}
		printDetail("%s", line)
	}
}

func printWarnings(warnings []errs.Warning) {
	for _, w := range warnings {
		printWarning("%s", w.String())
	}
}

func cacheLabel(cached bool) string {
	if cached {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

func joinDim(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(p))
	}
	return b.String()
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
