package cmd

import (
	"github.com/spf13/cobra"

	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/provider"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <path> <password>",
		Short: "create an empty repository and save it at path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			path, password := args[0], args[1]

			m := manager.New("ziplockctl", provider.NewFilesystem(), defaultArchiveOpts)
			if err := m.CreateAt(path, password); err != nil {
				printError("create %s: %v", path, err)
				return err
			}
			defer m.Close()

			printSuccess("created empty repository at %s", path)
			return nil
		},
	}
}
