package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// maxPages stops --paginate on runaway feeds.
const maxPages = 100

type apiOptions struct {
	method    string
	rawFields []string
	fields    []string
	headers   []string
	etag      string
	stored    bool
	paginate  bool
	jq        string
	include   bool
}

// apiCommand creates the api command.
func (c *CLI) apiCommand() *cobra.Command {
	var opts apiOptions

	cmd := &cobra.Command{
		Use:   "api <endpoint>",
		Short: "Send an authenticated request to the GitHub API",
		Long: `Send a request to a REST endpoint and print the response.

The endpoint is a path such as "repos/octocat/hello-world" (a leading slash is
optional). Fields become query parameters for GET and a JSON body otherwise.
-f adds a string field, -F infers numbers, booleans and null.`,
		Example: `  octowire api repos/cli/cli/releases --jq '.[].tag_name'
  octowire api -X POST repos/o/r/issues -f title=Bug -f body=Broken
  octowire api user/repos --paginate --jq '.[].full_name'
  octowire api repos/o/r --etag '"abc"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAPI(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method")
	flags.StringArrayVarP(&opts.rawFields, "raw-field", "f", nil, "add a string parameter (key=value)")
	flags.StringArrayVarP(&opts.fields, "field", "F", nil, "add a typed parameter (key=value)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "add a request header (key:value)")
	flags.StringVar(&opts.etag, "etag", "", "send If-None-Match with this validator")
	flags.BoolVar(&opts.stored, "cached", false, "send the ETag remembered by the ETag store")
	flags.BoolVar(&opts.paginate, "paginate", false, "follow Link pagination and merge array pages")
	flags.StringVarP(&opts.jq, "jq", "q", "", "filter the response with a jq expression")
	flags.BoolVarP(&opts.include, "include", "i", false, "print the status line and response headers")

	return cmd
}

func (c *CLI) runAPI(ctx context.Context, w io.Writer, endpoint string, opts apiOptions) error {
	logger := loggerFromContext(ctx)

	var filter *jqFilter
	if opts.jq != "" {
		f, err := compileJQ(opts.jq)
		if err != nil {
			return err
		}
		filter = f
	}

	reqOpts, err := buildRequest(opts)
	if err != nil {
		return err
	}
	if opts.paginate && reqOpts.Method != http.MethodGet {
		return fmt.Errorf("--paginate requires GET, got %s", reqOpts.Method)
	}

	client, cleanup, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	endpoint = "/" + strings.TrimPrefix(endpoint, "/")
	prog := newProgress(logger)

	resp, err := client.Dispatch(ctx, endpoint, reqOpts)
	if github.IsNotModified(err) {
		logger.Info("Not modified", "endpoint", endpoint)
		return nil
	}
	if err != nil {
		return err
	}
	if opts.include {
		writeHeaders(w, resp)
	}

	data := resp.Data
	if opts.paginate {
		items, ok := data.([]any)
		pages := 1
		for ok && pages < maxPages {
			next, more := resp.NextPageNumber()
			if !more {
				break
			}
			if reqOpts.Params == nil {
				reqOpts.Params = map[string]string{}
			}
			reqOpts.Params["page"] = strconv.Itoa(next)
			resp, err = client.Dispatch(ctx, endpoint, reqOpts)
			if err != nil {
				return err
			}
			page, isList := resp.Data.([]any)
			if !isList {
				break
			}
			items = append(items, page...)
			pages++
		}
		if ok {
			data = items
			prog.done(fmt.Sprintf("Fetched %d items in %d pages", len(items), pages))
		}
	}

	if filter != nil {
		values, err := filter.Run(ctx, data)
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := writeJQValue(w, v); err != nil {
				return err
			}
		}
		return nil
	}
	return writeData(w, data)
}

// buildRequest turns the flag values into request options.
func buildRequest(opts apiOptions) (*github.RequestOptions, error) {
	req := &github.RequestOptions{
		Method:        strings.ToUpper(opts.method),
		ETag:          opts.etag,
		UseStoredETag: opts.stored,
	}

	fields := map[string]any{}
	for _, f := range opts.rawFields {
		k, v, err := splitPair(f, "=")
		if err != nil {
			return nil, err
		}
		fields[k] = v
	}
	for _, f := range opts.fields {
		k, v, err := splitPair(f, "=")
		if err != nil {
			return nil, err
		}
		fields[k] = typedValue(v)
	}

	if len(opts.headers) > 0 {
		req.Headers = map[string]string{}
		for _, h := range opts.headers {
			k, v, err := splitPair(h, ":")
			if err != nil {
				return nil, err
			}
			req.Headers[k] = v
		}
	}

	if len(fields) == 0 {
		return req, nil
	}
	if req.Method == http.MethodGet || req.Method == "" {
		req.Params = map[string]string{}
		for k, v := range fields {
			req.Params[k] = fmt.Sprint(v)
		}
		return req, nil
	}
	req.Body = fields
	return req, nil
}

func splitPair(s, sep string) (key, value string, err error) {
	k, v, ok := strings.Cut(s, sep)
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("invalid %q: expected key%svalue", s, sep)
	}
	return k, strings.TrimSpace(v), nil
}

// typedValue interprets v like gh's -F: true, false, null and integers are
// converted, anything else stays a string.
func typedValue(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return v
}

func writeHeaders(w io.Writer, resp *github.Response) {
	fmt.Fprintf(w, "HTTP %d %s\n", resp.Status, http.StatusText(resp.Status))
	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, strings.Join(resp.Header[k], ", "))
	}
	fmt.Fprintln(w)
}

// writeData prints a payload: text as-is, JSON indented.
func writeData(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case string:
		_, err := io.WriteString(w, v)
		if err == nil && !strings.HasSuffix(v, "\n") {
			_, err = io.WriteString(w, "\n")
		}
		return err
	case []byte:
		_, err := w.Write(v)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
