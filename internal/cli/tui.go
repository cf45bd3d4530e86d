package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// maxFeedEvents is how many events the live feed keeps.
const maxFeedEvents = 200

var (
	feedHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	feedDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

// eventMsg carries one delivered event into the feed.
type eventMsg struct {
	target string
	event  github.Event
}

// subErrorMsg reports a subscription failure.
type subErrorMsg struct {
	target string
	err    error
}

// subsDoneMsg signals that every subscription has ended.
type subsDoneMsg struct{}

// =============================================================================
// FeedModel - Live event table for watch --tui
// =============================================================================

// FeedModel is the bubbletea model behind watch --tui. Newest events come
// first.
type FeedModel struct {
	Targets []string
	Events  []eventMsg
	Counts  map[string]int
	Errors  map[string]string
	Done    bool
	Height  int

	now func() time.Time
}

// NewFeedModel creates a feed for targets.
func NewFeedModel(targets []string) FeedModel {
	return FeedModel{
		Targets: targets,
		Counts:  make(map[string]int),
		Errors:  make(map[string]string),
		Height:  15,
		now:     time.Now,
	}
}

func (m FeedModel) Init() tea.Cmd {
	return nil
}

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	case eventMsg:
		m.Events = append([]eventMsg{msg}, m.Events...)
		if len(m.Events) > maxFeedEvents {
			m.Events = m.Events[:maxFeedEvents]
		}
		m.Counts[msg.target]++
		delete(m.Errors, msg.target)
	case subErrorMsg:
		m.Errors[msg.target] = fmt.Sprintf("%s: %s", errors.GetCode(msg.err), errors.UserMessage(msg.err))
	case subsDoneMsg:
		m.Done = true
	}
	return m, nil
}

func (m FeedModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Watching %s", strings.Join(m.Targets, ", "))))
	b.WriteString("\n")
	b.WriteString(feedDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	now := time.Now
	if m.now != nil {
		now = m.now
	}

	end := min(m.Height, len(m.Events))
	rows := make([][]string, 0, end)
	for _, e := range m.Events[:end] {
		rows = append(rows, []string{
			formatRelativeTime(e.event.CreatedAt, now()),
			e.target,
			e.event.Type,
			e.event.Actor.Login,
			eventSummary(e.event),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("When", "Feed", "Type", "Actor", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return feedHeaderStyle
			}
			switch col {
			case 0:
				return feedDimStyle
			case 2:
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	for _, target := range m.Targets {
		line := fmt.Sprintf("  %s %d events", target, m.Counts[target])
		if msg, ok := m.Errors[target]; ok {
			line += "  " + StyleError.Render(msg)
		}
		b.WriteString(feedDimStyle.Render(line))
		b.WriteString("\n")
	}
	if m.Done {
		b.WriteString(StyleWarning.Render("All subscriptions ended"))
		b.WriteString("\n")
	}
	return b.String()
}

// feedTargets lists targets in a stable order.
func feedTargets(targets []github.Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
