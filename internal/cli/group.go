package cli

import (
	"github.com/jrsteele09/uniassist/users"
	"github.com/spf13/cobra"
)

func (a *app) newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage the study group used for the timetable",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <number>",
		Short: "Set the six digit group number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := users.ParseGroupNumber(args[0])
			if err != nil {
				return err
			}
			user, err := a.users.UpdateGroup(cmd.Context(), &n)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), user)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the group number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.users.UpdateGroup(cmd.Context(), nil)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), user)
			return nil
		},
	})

	return cmd
}
