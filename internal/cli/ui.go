package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/html2deck/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Conversion Display
// =============================================================================

// deckStats formats a converted deck on a single dimmed line.
func deckStats(slides int, cached bool, d time.Duration) string {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts := []string{
		StyleDim.Render(plural(slides, "slide")),
		statusStyle.Render(status),
		StyleDim.Render(d.Round(time.Millisecond).String()),
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// printBatchSummary prints one line per file followed by outcome counts.
func printBatchSummary(res *pipeline.BatchResult) {
	for _, f := range res.Files {
		switch f.Outcome {
		case pipeline.OutcomeConverted, pipeline.OutcomeCached:
			printSuccess("%s", f.Input)
			printFile(f.Output)
			fmt.Println(deckStats(f.Slides, f.Outcome == pipeline.OutcomeCached, f.Duration))
		case pipeline.OutcomeFailed:
			printError("%s", f.Input)
			printDetail("%v", f.Err)
		case pipeline.OutcomeAbandoned:
			printWarning("%s skipped: worker %d could not start a browser", f.Input, f.Worker)
		}
	}
	fmt.Println()
	printKeyValue("Converted", StyleNumber.Render(fmt.Sprint(res.Count(pipeline.OutcomeConverted))))
	printKeyValue("Cached", StyleNumber.Render(fmt.Sprint(res.Count(pipeline.OutcomeCached))))
	if n := res.Count(pipeline.OutcomeFailed); n > 0 {
		printKeyValue("Failed", StyleError.Render(fmt.Sprint(n)))
	}
	if n := res.Count(pipeline.OutcomeAbandoned); n > 0 {
		printKeyValue("Abandoned", StyleWarning.Render(fmt.Sprint(n)))
	}
	printKeyValue("Workers", fmt.Sprint(res.Workers))
	printKeyValue("Elapsed", res.Duration.Round(time.Millisecond).String())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
