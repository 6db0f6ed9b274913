package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

// PresenceCommand returns the presence subcommand group.
func PresenceCommand() *cli.Command {
	return &cli.Command{
		Name:    "presence",
		Aliases: []string{"pres"},
		Usage:   "Manage presence",
		Subcommands: []*cli.Command{
			{
				Name:  "heartbeat",
				Usage: "Announce the acting user as present",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "label",
						Aliases: []string{"l"},
						Usage:   "Display name",
					},
				},
				Action: presenceHeartbeat,
			},
			{
				Name:  "peers",
				Usage: "List known peers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Substring filter on user ID or label",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of peers",
					},
					&cli.BoolFlag{
						Name:  "active-only",
						Usage: "Drop peers whose presence has lapsed",
					},
				},
				Action: presencePeers,
			},
			{
				Name:      "active",
				Usage:     "Check whether a user is present",
				ArgsUsage: "USER_ID",
				Action:    presenceActive,
			},
		},
	}
}

func presenceHeartbeat(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := api.Heartbeat(ctx, user, c.String("label"))
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, resp)
	}
	fmt.Printf("present as %s (%s)\n", resp.UserID, resp.Label)
	return nil
}

func presencePeers(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	peers, err := api.SearchPeers(ctx, user, c.String("query"), c.Int("limit"), c.Bool("active-only"))
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, peers)
	}

	rows := make([][]string, 0, len(peers))
	for _, p := range peers {
		online := "offline"
		if p.Online {
			online = "online"
		}
		rows = append(rows, []string{p.UserID, p.Label, online, formatUnixMilli(p.LastSeen)})
	}
	if err := writeTable(os.Stdout, []string{"USER ID", "LABEL", "STATUS", "LAST SEEN"}, rows); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d peers\n", len(peers))
	return nil
}

func presenceActive(c *cli.Context) error {
	userID := c.Args().First()
	if userID == "" {
		return fmt.Errorf("USER_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	active, err := api.IsActive(ctx, userID)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, map[string]any{"user_id": userID, "active": active})
	}
	if active {
		fmt.Printf("%s is active\n", userID)
	} else {
		fmt.Printf("%s is not active\n", userID)
	}
	return nil
}
