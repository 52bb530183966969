package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// PreviewSlotsCmd creates the previewSlots command. It needs no database.
func PreviewSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "previewSlots <start> <end> <volunteers>",
		Short: "Show how a window would be split into volunteer slots",
		Args:  cobra.ExactArgs(3),
		Annotations: map[string]string{
			SkipInitAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(args[0], args[1])
			if err != nil {
				return err
			}
			volunteers, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("volunteers must be a number: %w", err)
			}

			windows, err := services.PreviewSlots(start, end, volunteers)
			if err != nil {
				return err
			}
			printPreview(cmd.OutOrStdout(), volunteers, windows)
			return nil
		},
	}
}

// SkipInitAnnotation marks commands that run without config or database
const SkipInitAnnotation = "skipInit"

func printPreview(out io.Writer, volunteers int, windows []slots.Window) {
	fmt.Fprintf(out, "\n%d slot(s) for %d volunteer(s):\n", len(windows), volunteers)
	for i, w := range windows {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, w.Display())
	}
	if volunteers > 0 && len(windows) < volunteers {
		fmt.Fprintf(out, "%s  window too short for one slot per volunteer%s\n", colorYellow, colorReset)
	}
	fmt.Fprintln(out)
}
