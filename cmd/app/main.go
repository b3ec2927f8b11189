// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "website",
		Usage:   "Serve the website and its account API",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Commands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "Apply pending migrations and print the schema version",
						Flags:  config.Flags(),
						Action: server.MigrateStatus,
					},
					{
						Name:  "reset",
						Usage: "Roll back all migrations",
						Flags: append(config.Flags(), &cli.BoolFlag{
							Name:  "yes",
							Usage: "Confirm dropping all tables",
						}),
						Action: server.MigrateReset,
					},
				},
			},
			{
				Name:  "comments",
				Usage: "List submitted comments",
				Flags: append(config.Flags(), &cli.StringFlag{
					Name:  "status",
					Value: "pending",
					Usage: "Moderation status to list (pending, approved, rejected)",
				}),
				Action: server.ListComments,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
