package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/alarmbot/internal/tui"
)

// chatLogFile receives the logs while the chat window owns the terminal.
const chatLogFile = "alarmbot.log"

func newChatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with alarmbot in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logFile, err := os.OpenFile(chatLogPath(v), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
			if err != nil {
				return errors.Wrap(err, "failed to open chat log")
			}
			defer logFile.Close()

			a, err := openApp(ctx, v, logFile)
			if err != nil {
				return err
			}
			defer a.Close()

			bridge := tui.NewBridge(0)
			ag := a.newAgent(bridge, cmd.OutOrStdout())
			scheduler := a.newScheduler(ag.OnFired)

			g, gctx := errgroup.WithContext(ctx)
			runCtx, stop := context.WithCancel(gctx)
			defer stop()

			g.Go(func() error { return ag.Run(runCtx) })
			g.Go(func() error { return scheduler.Start(runCtx) })
			g.Go(func() error {
				defer stop()
				return tui.Run(runCtx, ag, bridge)
			})

			err = g.Wait()
			scheduler.Stop()
			return err
		},
	}
}

func chatLogPath(v *viper.Viper) string {
	if data := v.GetString("data"); data != "" {
		return filepath.Join(data, chatLogFile)
	}
	return filepath.Join(os.TempDir(), chatLogFile)
}
