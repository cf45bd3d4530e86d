package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// rateLimitCommand creates the rate-limit command.
func (c *CLI) rateLimitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate-limit",
		Short: "Show API quota per resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRateLimit(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *CLI) runRateLimit(ctx context.Context, w io.Writer) error {
	client, cleanup, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	overview, _, err := client.RateLimit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, renderRateLimits(overview, time.Now()))
	return nil
}

// renderRateLimits draws one row per resource, sorted by name.
func renderRateLimits(o *github.RateLimitOverview, now time.Time) string {
	names := make([]string, 0, len(o.Resources))
	for name := range o.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		r := o.Resources[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(r.Used),
			strconv.Itoa(r.Remaining),
			strconv.Itoa(r.Limit),
			formatReset(r.ResetTime(), now),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Resource", "Used", "Remaining", "Limit", "Resets").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 && row < len(names) && o.Resources[names[row]].Remaining == 0 {
				return StyleError
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatReset(reset, now time.Time) string {
	d := reset.Sub(now).Round(time.Second)
	if d <= 0 {
		return "now"
	}
	return "in " + d.String()
}
