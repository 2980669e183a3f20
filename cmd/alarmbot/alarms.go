package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/alarmbot/plugin/ai/aitime"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/filter"
	"github.com/hrygo/alarmbot/plugin/ical"
)

var (
	clockColor   = color.New(color.FgCyan, color.Bold)
	dateColor    = color.New(color.FgBlue)
	ringingColor = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.Faint)
)

func newAlarmsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "Manage stored alarms without the chat",
	}
	cmd.AddCommand(
		newAlarmsListCmd(v),
		newAlarmsAddCmd(v),
		newAlarmsDeleteCmd(v),
		newAlarmsClearCmd(v),
		newAlarmsExportCmd(v),
	)
	return cmd
}

func newAlarmsListCmd(v *viper.Viper) *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alarms, optionally filtered by a CEL expression",
		Example: `  alarmbot alarms list
  alarmbot alarms list --filter 'hour < 12 && !dated'
  alarmbot alarms list --filter 'description.contains("gym")'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.Compile(expr)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), v, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			alarms, err := f.Apply(a.alarms.List())
			if err != nil {
				return err
			}
			printAlarms(cmd.OutOrStdout(), alarms, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "CEL filter over id, time, hour, minute, description, ringing, dated, date")
	return cmd
}

func newAlarmsAddCmd(v *viper.Viper) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <time expression>",
		Short: `Add an alarm from a time expression such as "7:30 am" or "tomorrow at 6"`,
		Example: `  alarmbot alarms add 7:30 am for gym
  alarmbot alarms add in 20 minutes tea`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			res, err := aitime.NewService().Resolve(cmd.Context(), input, time.Now())
			if err != nil {
				return errors.Wrapf(err, "cannot read a time from %q", input)
			}
			if description == "" {
				description = res.Description
			}

			a, err := openApp(cmd.Context(), v, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			_, message, err := a.alarms.Create(cmd.Context(), res.Hour, res.Minute, description, res.Date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description, overriding the words after the time")
	return cmd
}

func newAlarmsDeleteCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <time|id>",
		Short: "Delete the first alarm at a time such as 7:30 or 7pm, or the alarm with a numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), v, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			target := args[0]
			var removed *reminder.Alarm
			if id, parseErr := strconv.ParseInt(target, 10, 64); parseErr == nil {
				removed, err = a.alarms.DeleteByID(cmd.Context(), id)
			} else {
				del, resolveErr := aitime.ResolveDelete(target)
				if resolveErr != nil || del.All {
					return errors.Errorf("%q is neither a time nor an alarm id", target)
				}
				target = del.Time
				removed, err = a.alarms.Delete(cmd.Context(), target)
			}

			if errors.Is(err, reminder.ErrNotFound) {
				fmt.Fprintln(out, reminder.NotFoundMessage(target))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, reminder.DeletedMessage(removed))
			return nil
		},
	}
}

func newAlarmsClearCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every alarm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), v, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			a.alarms.DeleteAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), reminder.DeletedAllMessage)
			return nil
		},
	}
}

func newAlarmsExportCmd(v *viper.Viper) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export alarms as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), v, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "failed to create export file")
				}
				defer f.Close()
				w = f
			}
			return ical.Encode(w, a.alarms.List(), time.Now())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, - or empty for stdout")
	return cmd
}

// printAlarms writes one colored line per alarm with its next firing time.
func printAlarms(w io.Writer, alarms []*reminder.Alarm, now time.Time) {
	if len(alarms) == 0 {
		fmt.Fprintln(w, reminder.NoAlarmsMessage)
		return
	}

	for _, a := range alarms {
		line := clockColor.Sprint(a.Time)
		if label := a.DateLabel(); label != "" {
			line += " " + dateColor.Sprint(label)
		}
		line += "  " + a.Description
		if a.IsRinging {
			line += " " + ringingColor.Sprint("RINGING")
		} else if next, ok := ical.NextFire(a, now); ok {
			line += " " + mutedColor.Sprintf("(in %s)", reminder.FormatRemaining(next.Sub(now)))
		}
		line += " " + mutedColor.Sprintf("#%d", a.ID)
		fmt.Fprintln(w, line)
	}
}
