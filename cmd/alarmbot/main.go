package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/alarmbot/internal/profile"
)

// version is set at build time.
var version = "dev"

func newRootCmd() *cobra.Command {
	v := profile.NewViper()

	rootCmd := &cobra.Command{
		Use:           "alarmbot",
		Short:         "A chat bot that sets, lists, rings and stops alarms",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			path := v.GetString("config")
			if path == "" {
				return nil
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "failed to read config %s", path)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("mode", "dev", `mode of alarmbot, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "storage driver: sqlite, postgres, bolt or memory")
	flags.String("dsn", "", "database source name")
	flags.Duration("tick-interval", profile.DefaultTickInterval, "how often alarms are checked")
	flags.String("ring-command", "", "command that plays the alarm sound; empty rings the terminal bell")
	flags.String("voice-command", "", "speech-to-text command that prints one transcript; empty disables voice")
	flags.String("notify-command", profile.DefaultNotifyCommand, "desktop notification command")
	flags.String("notify-permission", "unknown", `notification permission: "unknown", "granted" or "denied"`)
	flags.String("webhook-url", "", "URL that receives a POST for every ringing alarm")
	flags.String("webhook-secret", "", "value of the X-Webhook-Secret header")
	bindFlags(v, flags)

	rootCmd.AddCommand(
		newChatCmd(v),
		newServeCmd(v),
		newAlarmsCmd(v),
	)
	return rootCmd
}

// bindFlags binds every flag to the viper key of the same name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
