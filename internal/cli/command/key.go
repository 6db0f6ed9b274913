package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
)

// KeyCommand returns the local key pool subcommand group.
func KeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the server's local key pool",
		Subcommands: []*cli.Command{
			{
				Name:      "issue",
				Usage:     "Draw an unused key from the pool",
				ArgsUsage: "LENGTH",
				Action:    keyIssue,
			},
			{
				Name:      "get",
				Usage:     "Look up a key by ID without consuming it",
				ArgsUsage: "KEY_ID",
				Action:    keyGet,
			},
		},
	}
}

func keyIssue(c *cli.Context) error {
	rawLength := c.Args().First()
	if rawLength == "" {
		return fmt.Errorf("LENGTH argument is required")
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

	keyID, material, err := api.IssueKey(ctx, length)
	if err != nil {
		return err
	}

	if jsonOutput(c) {
		return writeJSON(os.Stdout, map[string]any{
			"key_id":   keyID,
			"length":   len(material),
			"material": fmt.Sprintf("%x", material),
		})
	}
	fmt.Printf("%s %x\n", keyID, material)
	return nil
}

func keyGet(c *cli.Context) error {
	keyID := c.Args().First()
	if keyID == "" {
		return fmt.Errorf("KEY_ID argument is required")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	material, err := api.LookupKey(ctx, keyID)
	if err != nil {
		return err
	}
	if material == nil {
		fmt.Printf("key %s is not known\n", keyID)
		return nil
	}

	fmt.Printf("%x\n", material)
	return nil
}
