package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/provider"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path> <password>",
		Short: "list credentials in a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			path, password := args[0], args[1]

			m := manager.New("ziplockctl", provider.NewFilesystem(), defaultArchiveOpts)
			if err := m.OpenAt(path, password); err != nil {
				printError("open %s: %v", path, err)
				return err
			}
			defer m.Close()

			for _, cred := range m.Repository().ListCredentials() {
				fmt.Printf("%s\t%s\t%s\n", cred.ID, cred.CredentialType, cred.Title)
			}
			return nil
		},
	}
}
