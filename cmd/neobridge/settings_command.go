package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neobridge/internal/settings"
)

func newSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "settings",
		Short:       "List the g:neovide_* settings the bridge understands",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.New(nil)
			if err := store.RegisterDefaults(); err != nil {
				return err
			}
			rows := make([][]string, 0, len(store.Names()))
			for _, s := range store.Settings() {
				rows = append(rows, []string{
					"g:" + settings.VarPrefix + s.Name,
					s.Kind.String(),
					s.Default.String(),
					s.Description,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Variable", "Type", "Default", "Description"}, rows, nil))
			return nil
		},
	}
}
