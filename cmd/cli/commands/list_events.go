package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// ListEventsCmd creates the listEvents command
func ListEventsCmd(app *AppContext) *cobra.Command {
	var (
		activeOnly bool
		from       string
	)

	cmd := &cobra.Command{
		Use:   "listEvents",
		Short: "List events with their open slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := services.ListEventsFilter{ActiveOnly: activeOnly}
			if from != "" {
				d, err := time.Parse(time.DateOnly, from)
				if err != nil {
					return fmt.Errorf("from must be YYYY-MM-DD: %w", err)
				}
				filter.From = d
			}

			app.Logger.Debug("listEvents command", zap.Bool("active_only", activeOnly), zap.String("from", from))

			events, err := app.Service.ListEvents(app.Ctx, filter)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d events:\n\n", len(events))
			for _, e := range events {
				status := ""
				if !e.Active {
					status = colorDim + " [cancelled]" + colorReset
				}
				fill := fmt.Sprintf("%d/%d", e.VolunteersAttending, e.VolunteersAttending+e.VolunteersNeeded)
				fmt.Printf("- %s  %-24s %s  %s%s%s  (%s)%s\n",
					e.Date.Format(slots.DateLayout),
					e.Name,
					e.Window.Display(),
					capacityColor(e.VolunteersAttending, e.VolunteersNeeded),
					fill,
					colorReset,
					e.ID,
					status,
				)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active events")
	cmd.Flags().StringVar(&from, "from", "", "Only list events on or after this date (YYYY-MM-DD)")

	return cmd
}

// capacityColor is green once every slot is taken, yellow when at least half
// are taken and red otherwise. Over-subscribed events show yellow.
func capacityColor(attending, needed int) string {
	switch {
	case needed < 0:
		return colorYellow
	case needed == 0:
		return colorGreen
	case attending >= needed:
		return colorYellow
	default:
		return colorRed
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
