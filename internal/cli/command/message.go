package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Vinuthna-Athimamula/QuMail/internal/client"
	"github.com/Vinuthna-Athimamula/QuMail/pkg/keywrap"
)

// defaultChunkBytes is the material drawn per sealed message.
const defaultChunkBytes = 32

// MessageCommand returns the message subcommand group.
func MessageCommand() *cli.Command {
	return &cli.Command{
		Name:    "message",
		Aliases: []string{"msg"},
		Usage:   "Seal and open message payloads",
		Subcommands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Seal a payload for a peer, printing the envelope",
				ArgsUsage: "PEER_ID [PAYLOAD]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-bytes",
						Value: defaultChunkBytes,
						Usage: "Key material drawn for this message",
					},
				},
				Action: messageSend,
			},
			{
				Name:      "open",
				Usage:     "Open an envelope read from FILE or stdin",
				ArgsUsage: "[FILE]",
				Action:    messageOpen,
			},
		},
	}
}

// messageSend reserves a chunk in the pairwise session, seals the
// payload with it and prints the envelope. The receiver opens it with
// only the coordinates; the material itself never rides along.
//
// When the peer is offline no session can be opened, so the payload is
// sealed with a freshly issued local pool key instead and the envelope
// carries the key ID.
func messageSend(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	peer := c.Args().Get(0)
	if peer == "" {
		return fmt.Errorf("PEER_ID argument is required")
	}

	payload := []byte(c.Args().Get(1))
	if len(payload) == 0 {
		payload, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read payload from stdin: %w", err)
		}
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Refresh the sender's own presence before opening the session.
	if _, err := api.Heartbeat(ctx, user, ""); err != nil {
		return err
	}

	status, _, err := api.InitiateSession(ctx, user, peer, 0)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "QM-PRES-4120" {
		return sendWithPoolKey(ctx, c, api, payload)
	}
	if err != nil {
		return err
	}

	ticket, err := api.ReserveChunk(ctx, status.SessionID, user, c.Int("chunk-bytes"))
	if err != nil {
		return err
	}

	material, err := api.ReadChunk(ctx, ticket.SessionID, user, ticket.Offset, ticket.Length)
	if err != nil {
		return err
	}

	env, err := keywrap.Seal(material, keywrap.Ref{
		SessionID: ticket.SessionID,
		Offset:    ticket.Offset,
		Length:    ticket.Length,
	}, payload)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(env)
}

// sendWithPoolKey seals the payload with a key from the local pool.
func sendWithPoolKey(ctx context.Context, c *cli.Context, api *client.Client, payload []byte) error {
	keyID, material, err := api.IssueKey(ctx, c.Int("chunk-bytes"))
	if err != nil {
		return err
	}

	env, err := keywrap.Seal(material, keywrap.Ref{KeyID: keyID}, payload)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "peer not present; sealed with local pool key")
	return json.NewEncoder(os.Stdout).Encode(env)
}

// messageOpen reads the chunk named by the envelope coordinates and
// decrypts the payload to stdout.
func messageOpen(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path := c.Args().First(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var env keywrap.Envelope
	if err := json.NewDecoder(in).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var material []byte
	if env.Ref.KeyID != "" {
		material, err = api.LookupKey(ctx, env.Ref.KeyID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("pool key %s is not known here", env.Ref.KeyID)
		}
	} else {
		material, err = api.ReadChunk(ctx, env.Ref.SessionID, user, env.Ref.Offset, env.Ref.Length)
		if err != nil {
			return err
		}
	}

	plaintext, err := keywrap.Open(material, &env)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(plaintext)
	return err
}
