package cmd

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=1.2.3".
var Version = "dev"

// GetVersion returns the build version normalized to semver, or "dev" for
// builds without a valid version stamp.
func GetVersion() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return "dev"
	}
	return v.String()
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pr-summarizer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pr-summarizer %s\n", GetVersion())
		},
	}
}
