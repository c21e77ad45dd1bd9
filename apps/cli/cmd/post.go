package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/asynchttp/packages/http"
	"github.com/spf13/cobra"
)

var (
	postFlags     requestFlags
	postTypeFlag  string
	postSchema    string
	postWatchFlag bool
	postDataFlag  string
)

var postCmd = &cobra.Command{
	Use:   "post <url> [body]",
	Short: "Send a POST request",
	Long: `Send a POST request and print the raw response.

The body is taken literally, read from a file with @path, or from stdin
with @-. Form bodies are percent-encoded before sending; json, xml, text
and binary bodies are sent as given.`,
	Example: `  asynchttp post http://localhost/login "user=alice&pass=s3cret"
  asynchttp post http://localhost/items @item.json --type json --schema item.schema.json
  asynchttp post http://localhost/items -d @item.json --type json --watch`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := &requestSpec{
			method:      http.MethodPost,
			url:         args[0],
			contentType: http.ParseContentType(postTypeFlag),
			schema:      postSchema,
		}
		spec.bodyArg = postDataFlag
		if len(args) > 1 {
			if cmd.Flags().Changed("data") {
				return withExitCode(ExitUsageError, fmt.Errorf("body given both as argument and --data"))
			}
			spec.bodyArg = args[1]
		}
		return runRequest(cmd, spec, &postFlags, postWatchFlag)
	},
}

func init() {
	postFlags.register(postCmd)
	postCmd.Flags().StringVarP(&postDataFlag, "data", "d", "", "Request body, @file to read a file or @- for stdin")
	postCmd.Flags().StringVarP(&postTypeFlag, "type", "t", "form", "Body type: form, json, xml, text, binary")
	postCmd.Flags().StringVar(&postSchema, "schema", "", "JSON schema file the body must satisfy before sending")
	postCmd.Flags().BoolVarP(&postWatchFlag, "watch", "w", false, "Re-send whenever the @file body changes")
}
