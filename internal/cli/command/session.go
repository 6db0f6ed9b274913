package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Manage pairwise key sessions",
		Subcommands: []*cli.Command{
			{
				Name:      "initiate",
				Usage:     "Create or join the session with a peer",
				ArgsUsage: "PEER_ID",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "initial-bytes",
						Usage: "Initial buffer size (defaults to server target)",
					},
				},
				Action: sessionInitiate,
			},
			{
				Name:      "get",
				Usage:     "Show a session by ID",
				ArgsUsage: "SESSION_ID",
				Action:    sessionGet,
			},
			{
				Name:      "pair",
				Usage:     "Show the live session with a peer",
				ArgsUsage: "PEER_ID",
				Action:    sessionPair,
			},
			{
				Name:      "refill",
				Usage:     "Top up the buffer shared with a peer",
				ArgsUsage: "PEER_ID",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "target-bytes",
						Usage: "Desired total buffer size",
					},
				},
				Action: sessionRefill,
			},
			{
				Name:      "reserve",
				Usage:     "Reserve a chunk of key material",
				ArgsUsage: "SESSION_ID LENGTH",
				Action:    sessionReserve,
			},
			{
				Name:      "read",
				Usage:     "Read reserved material by coordinates",
				ArgsUsage: "SESSION_ID OFFSET LENGTH",
				Action:    sessionRead,
			},
		},
	}
}

func sessionInitiate(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	peer := c.Args().First()
	if peer == "" {
		return fmt.Errorf("PEER_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, created, err := api.InitiateSession(ctx, user, peer, c.Int("initial-bytes"))
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, status)
	}
	if created {
		fmt.Printf("created session %s\n", status.SessionID)
	} else {
		fmt.Printf("joined existing session %s\n", status.SessionID)
	}
	return printSessionStatus(status)
}

func sessionGet(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("SESSION_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := api.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, status)
	}
	return printSessionStatus(status)
}

func sessionPair(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	peer := c.Args().First()
	if peer == "" {
		return fmt.Errorf("PEER_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := api.GetPairSession(ctx, user, peer)
	if err != nil {
		return err
	}
	if status == nil {
		fmt.Printf("no live session with %s\n", peer)
		return nil
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, status)
	}
	return printSessionStatus(status)
}

func sessionRefill(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	peer := c.Args().First()
	if peer == "" {
		return fmt.Errorf("PEER_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := api.RefillSession(ctx, user, peer, c.Int("target-bytes"))
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, resp)
	}
	fmt.Printf("added %d bytes toward a target of %d\n", resp.AddedBytes, resp.EstimatedTarget)
	return printSessionStatus(resp.Session)
}

func sessionReserve(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	sessionID := c.Args().Get(0)
	rawLength := c.Args().Get(1)
	if sessionID == "" || rawLength == "" {
		return fmt.Errorf("SESSION_ID and LENGTH arguments are required")
	}
	length, err := strconv.Atoi(rawLength)
	if err != nil {
		return fmt.Errorf("invalid length %q", rawLength)
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ticket, err := api.ReserveChunk(ctx, sessionID, user, length)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, ticket)
	}
	fmt.Printf("reserved %d bytes at offset %d in %s\n", ticket.Length, ticket.Offset, ticket.SessionID)
	return nil
}

func sessionRead(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	sessionID := c.Args().Get(0)
	rawOffset := c.Args().Get(1)
	rawLength := c.Args().Get(2)
	if sessionID == "" || rawOffset == "" || rawLength == "" {
		return fmt.Errorf("SESSION_ID, OFFSET and LENGTH arguments are required")
	}
	offset, err := strconv.Atoi(rawOffset)
	if err != nil {
		return fmt.Errorf("invalid offset %q", rawOffset)
	}
	length, err := strconv.Atoi(rawLength)
	if err != nil {
		return fmt.Errorf("invalid length %q", rawLength)
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	material, err := api.ReadChunk(ctx, sessionID, user, offset, length)
	if err != nil {
		return err
	}

	// Raw material goes to stdout as hex for piping; nothing else is
	// printed on this path.
	fmt.Printf("%x\n", material)
	return nil
}

func printSessionStatus(s *service.SessionStatus) error {
	return writeTable(os.Stdout,
		[]string{"FIELD", "VALUE"},
		[][]string{
			{"session", s.SessionID},
			{"parties", s.UserA + " / " + s.UserB},
			{"created", formatUnixMilli(s.CreatedAt)},
			{"expires", formatUnixMilli(s.ExpiresAt)},
			{"total bytes", strconv.Itoa(s.TotalBytes)},
			{"reserved", strconv.Itoa(s.ReservedBytes)},
			{"available", strconv.Itoa(s.AvailableBytes)},
			{"cap", strconv.Itoa(s.MaxBytes)},
		})
}
