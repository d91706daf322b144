package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds `version` to a COFRN binary. The plain form
// prefixes the build string with the binary name; --json prints the same
// document as /debug/about.
func AttachCobraVersionCommand(root *cobra.Command) {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information of " + root.Name() + ".",
		Long: `Print the version, commit and build time injected at build time.

Compare it with /debug/about of a running cofrn-api, or with the Lambda
function description, before rolling a release forward.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !asJSON {
				_, err := fmt.Fprintf(out, "%s %s\n", root.Name(), Full())
				return err
			}

			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")

			return encoder.Encode(Info())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	root.AddCommand(cmd)
}
