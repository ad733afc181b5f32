package commands

import (
	"fmt"
	"runtime"

	"github.com/acklang/ack/internal/cache"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display ack version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ack v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Component compiler (%s, %s)\n", cache.Version, runtime.Version())
		},
	}
}
