package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values such as event types.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

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

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleActor   = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
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
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Events
// =============================================================================

// writeEvent prints one feed line:
//
//	15:04:05 octocat/hello-world → PushEvent by octocat
func writeEvent(w io.Writer, target string, ev github.Event) {
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		StyleDim.Render(ev.CreatedAt.Local().Format(time.TimeOnly)),
		target,
		StyleDim.Render(iconArrow),
		StyleHighlight.Render(ev.Type),
		StyleDim.Render("by ")+styleActor.Render(ev.Actor.Login),
	)
}

// eventSummary extracts the most useful payload detail of ev, or "".
func eventSummary(ev github.Event) string {
	str := func(m map[string]any, key string) string {
		s, _ := m[key].(string)
		return s
	}
	switch ev.Type {
	case "PushEvent":
		ref := strings.TrimPrefix(str(ev.Payload, "ref"), "refs/heads/")
		if n, ok := ev.Payload["size"].(float64); ok {
			return fmt.Sprintf("%d commit(s) to %s", int(n), ref)
		}
		return ref
	case "IssuesEvent", "PullRequestEvent":
		action := str(ev.Payload, "action")
		for _, key := range []string{"issue", "pull_request"} {
			if obj, ok := ev.Payload[key].(map[string]any); ok {
				if n, ok := obj["number"].(float64); ok {
					return fmt.Sprintf("%s #%d", action, int(n))
				}
			}
		}
		return action
	case "CreateEvent", "DeleteEvent":
		return strings.TrimSpace(str(ev.Payload, "ref_type") + " " + str(ev.Payload, "ref"))
	case "ReleaseEvent":
		if rel, ok := ev.Payload["release"].(map[string]any); ok {
			return str(ev.Payload, "action") + " " + str(rel, "tag_name")
		}
	case "WatchEvent", "ForkEvent", "IssueCommentEvent", "MemberEvent":
		return str(ev.Payload, "action")
	}
	return ""
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
