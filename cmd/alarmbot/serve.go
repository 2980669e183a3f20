package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/server"
	apiv1 "github.com/hrygo/alarmbot/server/router/api/v1"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and alarm HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := openApp(ctx, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			conversation := agent.NewConversation(shortuuid.New(), agent.DefaultConversationLimit)
			ag := a.newAgent(conversation, cmd.OutOrStdout())
			scheduler := a.newScheduler(ag.OnFired)
			s := server.NewServer(a.profile, apiv1.NewAPIV1Service(a.profile, ag, conversation, scheduler))

			a.logger.Info("alarmbot started",
				"version", a.profile.Version,
				"driver", a.profile.Driver,
				"session_id", conversation.SessionID,
				"alarms", len(a.alarms.List()),
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return ag.Run(gctx) })
			g.Go(func() error { return scheduler.Start(gctx) })
			g.Go(func() error { return s.Start(gctx) })

			err = g.Wait()
			scheduler.Stop()
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.Float64("chat-rate-limit", profile.DefaultChatRateLimit, "chat requests per second per client")
	flags.Int("chat-rate-burst", profile.DefaultChatRateBurst, "chat request burst per client")
	bindFlags(v, flags)

	return cmd
}
