package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
)

// CreateAdminCmd creates the createAdmin command
func CreateAdminCmd(app *AppContext) *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "createAdmin <username>",
		Short: "Register an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Service.RegisterAdmin(app.Ctx, services.RegisterInput{
				Username:  args[0],
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s\n\n", result.Notification.Message)
			fmt.Printf("User ID:  %s\n", result.User.ID)
			fmt.Printf("Username: %s\n", result.User.Username)
			fmt.Printf("Status:   %s\n\n", result.User.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")

	return cmd
}
