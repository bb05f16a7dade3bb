package cmd

import (
	"github.com/spf13/cobra"

	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/provider"
)

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path> <password>",
		Short: "open a repository and print its stats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			path, password := args[0], args[1]

			m := manager.New("ziplockctl", provider.NewFilesystem(), defaultArchiveOpts)
			if err := m.OpenAt(path, password); err != nil {
				printError("open %s: %v", path, err)
				return err
			}
			defer m.Close()

			stats := m.GetStats()
			printSuccess("opened %s: %d credential(s), modified=%v", path, stats.CredentialCount, stats.IsModified)
			return nil
		},
	}
}
