package cmd

import (
	"github.com/spf13/cobra"

	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/provider"
)

func newSaveCmd() *cobra.Command {
	var newPassword string

	c := &cobra.Command{
		Use:   "save <path> <password>",
		Short: "re-encode and save a repository, optionally rotating its password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			path, password := args[0], args[1]

			m := manager.New("ziplockctl", provider.NewFilesystem(), defaultArchiveOpts)
			if err := m.OpenAt(path, password); err != nil {
				printError("open %s: %v", path, err)
				return err
			}
			defer m.Close()

			if newPassword != "" {
				if err := m.SaveAs(path, newPassword); err != nil {
					printError("save %s: %v", path, err)
					return err
				}
				printSuccess("saved %s with rotated password", path)
				return nil
			}

			if err := m.Save(); err != nil {
				printError("save %s: %v", path, err)
				return err
			}
			printSuccess("saved %s", path)
			return nil
		},
	}

	c.Flags().StringVar(&newPassword, "new-password", "", "rotate to a new password on save")
	return c
}
