package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/nestctl/pkg/nestctl/output"
	"github.com/telekom/nestctl/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show nestctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			rt, _ := getRuntime(cmd)
			writer := cmd.OutOrStdout()
			if rt != nil {
				writer = rt.Writer()
			}

			switch output.Format(outputFormat) {
			case "", output.FormatTable, output.FormatWide:
				_, _ = fmt.Fprintln(writer, info.String())
				return nil
			default:
				return output.WriteObject(writer, output.Format(outputFormat), info)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: table, json, yaml")

	return cmd
}
