// Command recur inspects and expands iCalendar recurrence rules from
// the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/cyp0633/librecur/rrule"
)

const timeLayout = "2006-01-02 15:04:05"

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	root := &cobra.Command{
		Use:           "recur",
		Short:         "Inspect and expand iCalendar recurrence rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newShowCmd(), newAllCmd(), newBetweenCmd(), newNextCmd(), newPrevCmd(), newBatchCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <rrule>",
		Short: "Parse a rule and print its canonical text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rrule.FromString(args[0])
			if err != nil {
				return err
			}
			fmt.Println(r.String())
			fmt.Println("DTSTART:", r.DTStart().Format(timeLayout))
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "all <rrule>",
		Short: "List occurrences of a rule, up to a limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rrule.FromString(args[0])
			if err != nil {
				return err
			}
			// The limit keeps unbounded rules from running forever.
			dates := r.AllFunc(func(t time.Time, n int) bool { return n < limit })
			printDates(dates)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of occurrences to list")
	return cmd
}

func newBetweenCmd() *cobra.Command {
	var after, before string
	var inc bool
	cmd := &cobra.Command{
		Use:   "between <rrule>",
		Short: "List occurrences within a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rrule.FromString(args[0])
			if err != nil {
				return err
			}
			from, err := parseTime(after)
			if err != nil {
				return err
			}
			to, err := parseTime(before)
			if err != nil {
				return err
			}
			printDates(r.Between(from, to, inc))
			return nil
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "window start (RFC 3339 or 20060102T150405Z)")
	cmd.Flags().StringVar(&before, "before", "", "window end")
	cmd.Flags().BoolVar(&inc, "inc", false, "include occurrences equal to a bound")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("before")
	return cmd
}

func newNextCmd() *cobra.Command {
	return newNearestCmd("next", "Print the first occurrence after an instant", true)
}

func newPrevCmd() *cobra.Command {
	return newNearestCmd("prev", "Print the last occurrence before an instant", false)
}

func newNearestCmd(name, short string, forward bool) *cobra.Command {
	var from string
	var inc bool
	cmd := &cobra.Command{
		Use:   name + " <rrule>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rrule.FromString(args[0])
			if err != nil {
				return err
			}
			dt := time.Now()
			if from != "" {
				if dt, err = parseTime(from); err != nil {
					return err
				}
			}
			var result mo.Option[time.Time]
			if forward {
				result = r.After(dt, inc)
			} else {
				result = r.Before(dt, inc)
			}
			t, ok := result.Get()
			if !ok {
				fmt.Println("no occurrence")
				return nil
			}
			fmt.Println(t.Format(timeLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "reference instant (default: now)")
	cmd.Flags().BoolVar(&inc, "inc", false, "accept an occurrence equal to the instant")
	return cmd
}

func printDates(dates []time.Time) {
	for _, t := range dates {
		fmt.Println(t.Format(timeLayout))
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "20060102T150405Z", "20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
