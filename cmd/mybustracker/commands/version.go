package commands

import (
	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the mybustracker CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version       string `json:"version"        yaml:"version"`
				ClientVersion string `json:"client_version" yaml:"client_version"`
				Commit        string `json:"commit"         yaml:"commit"`
				Built         string `json:"built"          yaml:"built"`
			}

			info := VersionInfo{
				Version:       version,
				ClientVersion: constants.Version,
				Commit:        commit,
				Built:         date,
			}

			return writeOutput(cmd.OutOrStdout(), info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Client Version", info.ClientVersion)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Built", info.Built)
			})
		},
	}
}
