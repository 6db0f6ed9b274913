package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server administration",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the server status summary",
				Action: systemStatus,
			},
			{
				Name:   "gc",
				Usage:  "Trigger an immediate expiry sweep",
				Action: systemGC,
			},
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: systemHealth,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := api.AdminStatus(ctx)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, status)
	}
	return writeTable(os.Stdout,
		[]string{"FIELD", "VALUE"},
		[][]string{
			{"active sessions", strconv.Itoa(status.ActiveSessions)},
			{"active users", strconv.Itoa(status.ActiveUsers)},
			{"pool keys", fmt.Sprintf("%d (%d unused)", status.PoolTotalKeys, status.PoolUnusedKeys)},
			{"version", status.Version},
			{"go version", status.GoVersion},
			{"uptime", (time.Duration(status.UptimeSeconds) * time.Second).String()},
		})
}

func systemGC(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := api.TriggerGC(ctx)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, resp)
	}
	fmt.Printf("removed %d expired sessions, %d stale presence records\n",
		resp.ExpiredSessions, resp.StalePresence)
	return nil
}

func systemHealth(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := api.Health(ctx); err != nil {
		return fmt.Errorf("server is unhealthy: %w", err)
	}
	fmt.Println("server is healthy")
	return nil
}
