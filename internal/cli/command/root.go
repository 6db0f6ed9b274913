package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Vinuthna-Athimamula/QuMail/internal/client"
	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	info := buildinfo.Get()

	return &cli.App{
		Name:    "qumail-cli",
		Usage:   "QuMail key service command-line tool",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PresenceCommand(),
			SessionCommand(),
			MessageCommand(),
			KeyCommand(),
			SystemCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "qumail-server base URL",
			EnvVars: []string{"QUMAIL_SERVER"},
			Value:   "http://127.0.0.1:8000",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Acting user ID (mail address)",
			EnvVars: []string{"QUMAIL_USER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// newClient builds an API client from the global flags.
func newClient(c *cli.Context) (*client.Client, error) {
	return client.New(c.String("server"))
}

// requireUser returns the acting user or a usage error.
func requireUser(c *cli.Context) (string, error) {
	user := c.String("user")
	if user == "" {
		return "", fmt.Errorf("--user is required (or set QUMAIL_USER)")
	}
	return user, nil
}
