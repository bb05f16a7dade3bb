package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/provider"
)

func newAddCmd() *cobra.Command {
	var (
		credType       string
		template       string
		fields         []string
		sensitiveNames []string
	)

	c := &cobra.Command{
		Use:   "add <path> <password> <title>",
		Short: "add a credential to a repository and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cc *cobra.Command, args []string) error {
			path, password, title := args[0], args[1], args[2]

			m := manager.New("ziplockctl", provider.NewFilesystem(), defaultArchiveOpts)
			if err := m.OpenAt(path, password); err != nil {
				printError("open %s: %v", path, err)
				return err
			}
			defer m.Close()

			var (
				cred *model.Credential
				err  error
			)
			if template != "" {
				tmpl, ok := model.FindTemplate(template)
				if !ok {
					printError("unknown template %q", template)
					return fmt.Errorf("unknown template %q", template)
				}
				cred, err = tmpl.Instantiate("", title)
			} else {
				cred, err = model.NewCredential("", title, credType)
			}
			if err != nil {
				printError("new credential: %v", err)
				return err
			}

			sensitive := make(map[string]bool, len(sensitiveNames))
			for _, name := range sensitiveNames {
				sensitive[name] = true
			}
			for _, kv := range fields {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					continue
				}
				cred.AddField(name, model.NewField(value, model.FieldText, sensitive[name]))
			}

			if err := m.Repository().AddCredential(cred); err != nil {
				printError("add credential: %v", err)
				return err
			}
			if err := m.Save(); err != nil {
				printError("save %s: %v", path, err)
				return err
			}

			printSuccess("added %q (id=%s) to %s", title, cred.ID, path)
			return nil
		},
	}

	c.Flags().StringVar(&credType, "type", "login", "credential type tag (ignored if --template is set)")
	c.Flags().StringVar(&template, "template", "", "stamp the credential from a builtin template (login, credit_card, secure_note)")
	c.Flags().StringArrayVar(&fields, "field", nil, "field as name=value, may be repeated (overrides template defaults)")
	c.Flags().StringArrayVar(&sensitiveNames, "sensitive", nil, "mark a --field name as sensitive, may be repeated")
	return c
}
