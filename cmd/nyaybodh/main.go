package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nyaybodh/nyaybodh/internal/version"
)

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "nyaybodh",
		Usage: "Search Indian case law from the terminal",
		// Answers such as addresses contain commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (default: config/<env>.yaml)",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name: local, dev, docker or prod",
				Sources: cli.EnvVars("ENV"),
				Value:   "local",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			SearchCommand(),
			CaseCommand(),
			GenerateCommand(),
			AskCommand(),
			ChatCommand(),
			UploadCommand(),
			AuthCommand(),
			AdminCommand(),
			CacheCommand(),
			ServeCommand(),
			VersionCommand(),
		},
	}
}

// CacheCommand creates the cache command.
func CacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the search results cache",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Drop every cached result set",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
					n, err := a.cache.Clear(ctx)
					if err != nil {
						return fmt.Errorf("clearing cache: %w", err)
					}
					fmt.Printf("Removed %d cached searches\n", n)
					return nil
				}),
			},
		},
	}
}

// VersionCommand creates the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(context.Context, *cli.Command) error {
			fmt.Println(version.String())
			return nil
		},
	}
}
