package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/routes"
)

func newCallCmd(opts *globalOptions) *cobra.Command {
	var (
		data    string
		params  []string
		query   []string
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "call <category> <action>",
		Short: "Dispatch a route through its middleware chain",
		Example: `  antoree call teachers search --query q=emily --query specialty=ielts
  antoree call bookings get --param id=bk-1
  antoree call contact submit --data '{"name":"Lan","email":"lan@example.com","message":"Hi"}'
  antoree call bookings createTrial --data @trial.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := routes.Category(strings.ToUpper(args[0]))
			action := args[1]

			body, err := parseData(data)
			if err != nil {
				return err
			}
			reqOpts := &routes.RequestOptions{
				Params:  toAnyMap(parsePairs(params)),
				Query:   parseQuery(query),
				Headers: flattenPairs(parsePairs(headers)),
			}

			out := cmd.OutOrStdout()
			return withRuntime(commandContext(cmd), opts, out, func(rt *runtime) error {
				resp := rt.hooks.ExecuteRoute(commandContext(cmd), category, action, body, reqOpts)
				if resp == nil {
					return fmt.Errorf("%s.%s: %s", category, action, rt.hooks.GetState(category, action).Error)
				}
				return printResponse(out, resp)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body, or @file to read it from a file")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "path parameter name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header name=value (repeatable)")
	return cmd
}

func parseData(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		var err error
		raw, err = os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("--data is not valid JSON: %w", err)
	}
	return body, nil
}

// parsePairs splits name=value flags; a repeated name keeps every value
func parsePairs(pairs []string) map[string][]string {
	out := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		name, value, _ := strings.Cut(p, "=")
		if name == "" {
			continue
		}
		out[name] = append(out[name], value)
	}
	return out
}

func parseQuery(pairs []string) map[string]any {
	out := make(map[string]any)
	for name, values := range parsePairs(pairs) {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out
}

func toAnyMap(m map[string][]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v[len(v)-1]
	}
	return out
}

func flattenPairs(m map[string][]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v[len(v)-1]
	}
	return out
}

func printResponse(w io.Writer, resp *httpclient.Response) error {
	if s, ok := resp.Data.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Data)
}
