package cmd

import (
	"github.com/abdul-hamid-achik/asynchttp/packages/http"
	"github.com/spf13/cobra"
)

var getFlags requestFlags

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Send a GET request",
	Long: `Send a GET request and print the raw response.

The URL must contain "://". Everything after the scheme delimiter up to the
first "/" is the host; the rest is the path. Ports in the URL are not parsed,
use the port config key instead.`,
	Example: `  asynchttp get http://example.com/
  asynchttp get http://localhost/api/items -H "Accept: application/json" --select items.0.id
  asynchttp get http://localhost/health --repeat 100 --poll-rate 5000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := &requestSpec{
			method: http.MethodGet,
			url:    args[0],
		}
		return runRequest(cmd, spec, &getFlags, false)
	},
}

func init() {
	getFlags.register(getCmd)
}
