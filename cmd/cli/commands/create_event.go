package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// CreateEventCmd creates the createEvent command
func CreateEventCmd(app *AppContext) *cobra.Command {
	var (
		location       string
		description    string
		donationTarget string
	)

	cmd := &cobra.Command{
		Use:   "createEvent <name> <date> <start> <end> <volunteers>",
		Short: "Create an event and split its window into volunteer slots",
		Long: `Create an event. Date is YYYY-MM-DD, start and end are 24-hour H:MM.
The window is divided into one slot per volunteer.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
			start, end, err := parseWindow(args[2], args[3])
			if err != nil {
				return err
			}
			volunteers, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("volunteers must be a number: %w", err)
			}
			target, err := parseAmount(donationTarget)
			if err != nil {
				return err
			}

			admin, err := app.AdminPrincipal()
			if err != nil {
				return err
			}

			result, err := app.Service.CreateEvent(app.Ctx, admin, services.CreateEventInput{
				Name:           args[0],
				Date:           date,
				Start:          start,
				End:            end,
				Location:       location,
				Description:    description,
				VolunteerCount: volunteers,
				DonationTarget: target,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s\n\n", result.Notification.Message)
			printEvent(result.Event)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Where the event takes place")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	cmd.Flags().StringVar(&donationTarget, "donation-target", "0", "Donations needed for the event")

	return cmd
}

// ScheduleSeriesCmd creates the scheduleSeries command
func ScheduleSeriesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduleSeries <template> <from> <until>",
		Short: "Create one event per occurrence of a configured event template",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, ok := app.Cfg.Template(args[0])
			if !ok {
				return fmt.Errorf("no event template named %q in config", args[0])
			}
			from, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("from must be YYYY-MM-DD: %w", err)
			}
			until, err := time.Parse(time.DateOnly, args[2])
			if err != nil {
				return fmt.Errorf("until must be YYYY-MM-DD: %w", err)
			}
			start, end, err := tmpl.Times()
			if err != nil {
				return err
			}

			admin, err := app.AdminPrincipal()
			if err != nil {
				return err
			}

			result, err := app.Service.CreateEventSeries(app.Ctx, admin, services.SeriesInput{
				Template: services.CreateEventInput{
					Name:           tmpl.Name,
					Start:          start,
					End:            end,
					Location:       tmpl.Location,
					Description:    tmpl.Description,
					VolunteerCount: tmpl.Volunteers,
					DonationTarget: tmpl.DonationTarget,
				},
				RRule: tmpl.RRule,
				From:  from,
				Until: until,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s: %d event(s)\n\n", result.Notification.Message, len(result.Events))
			for i, event := range result.Events {
				fmt.Printf("  %2d. %s  %s  (%s)\n", i+1, event.Date.Format("Mon Jan 2, 2006"), event.Window.Display(), event.ID)
			}
			fmt.Println()
			return nil
		},
	}
}

// CancelEventCmd creates the cancelEvent command
func CancelEventCmd(app *AppContext) *cobra.Command {
	return eventStatusCmd(app, "cancelEvent <event_id>", "Cancel an event, keeping its reservations", app.cancel)
}

// RescheduleEventCmd creates the rescheduleEvent command
func RescheduleEventCmd(app *AppContext) *cobra.Command {
	return eventStatusCmd(app, "rescheduleEvent <event_id>", "Reactivate a cancelled event", app.reschedule)
}

func (app *AppContext) cancel(admin model.Principal, id string) (*services.EventResult, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return app.Service.CancelEvent(app.Ctx, admin, eventID)
}

func (app *AppContext) reschedule(admin model.Principal, id string) (*services.EventResult, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return app.Service.RescheduleEvent(app.Ctx, admin, eventID)
}

func eventStatusCmd(app *AppContext, use, short string, apply func(model.Principal, string) (*services.EventResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := app.AdminPrincipal()
			if err != nil {
				return err
			}
			result, err := apply(admin, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ %s\n\n", result.Notification.Message)
			printEvent(result.Event)
			return nil
		},
	}
}

func parseWindow(startStr, endStr string) (clock.TimeOfDay, clock.TimeOfDay, error) {
	start, err := clock.ParseMilitary(startStr)
	if err != nil {
		return clock.TimeOfDay{}, clock.TimeOfDay{}, fmt.Errorf("start must be H:MM: %w", err)
	}
	end, err := clock.ParseMilitary(endStr)
	if err != nil {
		return clock.TimeOfDay{}, clock.TimeOfDay{}, fmt.Errorf("end must be H:MM: %w", err)
	}
	return start, end, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

func printEvent(event *model.Event) {
	fmt.Printf("Event ID:   %s\n", event.ID)
	fmt.Printf("Name:       %s\n", event.Name)
	fmt.Printf("Date:       %s\n", event.Date.Format(slots.DateLayout))
	fmt.Printf("Window:     %s\n", event.Window.Display())
	fmt.Printf("Active:     %t\n", event.Active)
	fmt.Printf("Volunteers: %d attending, %d needed\n\n", event.VolunteersAttending, event.VolunteersNeeded)

	if len(event.Slots) == 0 {
		fmt.Println("No open slots.")
		fmt.Println()
		return
	}
	fmt.Println("Open slots:")
	for i, tok := range event.Slots {
		fmt.Printf("  %2d. %s\n", i+1, tok.Window.Display())
	}
	fmt.Println()
}
