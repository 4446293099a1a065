package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"voyager.app/generator/common/id"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/queue"
)

var errSettled = errors.New("settled")

func newEventsCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Follow the status events a server published for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Redis.Enabled() {
				return config.Missing("Please add the REDIS_URL environment variable.", "REDIS_URL")
			}
			sessionID, err := id.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id: %w", err)
			}

			opts, err := redis.ParseURL(a.cfg.Redis.URL)
			if err != nil {
				return fmt.Errorf("parsing redis url: %w", err)
			}
			client := redis.NewClient(opts)
			defer func() { _ = client.Close() }()

			sub := queue.NewSubscriber(client, queue.SubscriberConfig{Prefix: a.cfg.Redis.StatusStream})
			enc := json.NewEncoder(cmd.OutOrStdout())

			err = sub.Tail(cmd.Context(), sessionID, from, func(_ context.Context, ev queue.StatusEvent) error {
				if err := enc.Encode(ev); err != nil {
					return err
				}
				if ev.Type == queue.EventJobsSettled {
					return errSettled
				}
				return nil
			}, nil)
			if errors.Is(err, errSettled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "0", `stream id to start after; "0" replays, "$" only new events`)
	return cmd
}
