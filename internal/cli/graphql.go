package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// graphqlCommand creates the graphql command.
func (c *CLI) graphqlCommand() *cobra.Command {
	var (
		query string
		vars  []string
		expr  string
	)
	cmd := &cobra.Command{
		Use:   "graphql",
		Short: "Run a GraphQL query",
		Long: `Post a query to the GraphQL endpoint and print its data member.

The query is read from -q, or from a file with -q @path, or from stdin with
-q -. Variables are given with -F and typed like api -F.`,
		Example: `  octowire graphql -q 'query { viewer { login } }'
  octowire graphql -q @query.graphql -F owner=cli -F name=cli --jq .repository.stargazerCount`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			text, err := readQuery(query, cmd.InOrStdin())
			if err != nil {
				return err
			}
			variables := map[string]any{}
			for _, v := range vars {
				k, val, err := splitPair(v, "=")
				if err != nil {
					return err
				}
				variables[k] = typedValue(val)
			}

			client, cleanup, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := client.GraphQL(ctx, text, variables)
			if err != nil {
				return err
			}
			if expr == "" {
				return writeData(w, resp.Data)
			}
			filter, err := compileJQ(expr)
			if err != nil {
				return err
			}
			values, err := filter.Run(ctx, resp.Data)
			if err != nil {
				return err
			}
			for _, v := range values {
				if err := writeJQValue(w, v); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "query text, @file or - for stdin")
	cmd.Flags().StringArrayVarP(&vars, "field", "F", nil, "add a variable (key=value)")
	cmd.Flags().StringVar(&expr, "jq", "", "filter the data with a jq expression")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func readQuery(q string, stdin io.Reader) (string, error) {
	switch {
	case q == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read query: %w", err)
		}
		q = string(data)
	case strings.HasPrefix(q, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(q, "@"))
		if err != nil {
			return "", fmt.Errorf("read query: %w", err)
		}
		q = string(data)
	}
	if strings.TrimSpace(q) == "" {
		return "", fmt.Errorf("query is empty")
	}
	return q, nil
}
