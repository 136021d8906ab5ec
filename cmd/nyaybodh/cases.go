package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nyaybodh/nyaybodh/internal/render"
)

// CaseCommand creates the case command.
func CaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "case",
		Usage: "Work with a single case",
		Commands: []*cli.Command{
			{
				Name:      "pdf",
				Usage:     "Download the case document",
				ArgsUsage: "<uuid>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the PDF to this file (default: <uuid>.pdf)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Store the PDF in the configured file storage instead",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "uuid")
					if err != nil {
						return err
					}
					a, err := newApp(ctx, cmd, appOptions{})
					if err != nil {
						return err
					}
					defer a.Close()

					if cmd.Bool("save") {
						saved, err := a.cases.Save(ctx, id)
						if err != nil {
							return err
						}
						fmt.Printf("Stored %s (%d bytes) at %s\n", saved.PDF.FileName(), len(saved.PDF.Data), saved.Path)
						return nil
					}

					pdf, err := a.cases.PDF(ctx, id)
					if err != nil {
						return err
					}
					out := cmd.String("output")
					if out == "" {
						out = pdf.FileName()
					}
					if err := os.WriteFile(out, pdf.Data, 0o600); err != nil {
						return fmt.Errorf("writing %s: %w", out, err)
					}
					fmt.Printf("Wrote %s (%d bytes)\n", out, len(pdf.Data))
					return nil
				},
			},
			{
				Name:      "recommend",
				Usage:     "List cases similar to this one",
				ArgsUsage: "<uuid>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "uuid")
					if err != nil {
						return err
					}
					a, err := newApp(ctx, cmd, appOptions{})
					if err != nil {
						return err
					}
					defer a.Close()

					recs, err := a.cases.Recommend(ctx, id)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return printJSON(recs)
					}
					fmt.Print(render.Recommendations(recs))
					return nil
				},
			},
		},
	}
}

// AskCommand creates the ask command.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a question about a case document",
		ArgsUsage: "<uuid> <question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-prepare",
				Usage: "Skip document preparation (already prepared)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return errors.New("usage: nyaybodh ask <uuid> <question>")
			}
			a, err := newApp(ctx, cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			question := strings.Join(cmd.Args().Tail(), " ")
			if _, err := a.assistant.Ask(ctx, cmd.Args().First(), question, !cmd.Bool("no-prepare"), os.Stdout); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}
}

// ChatCommand creates the chat command.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask the legal assistant a free-form question",
		ArgsUsage: "<message>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.assistant.Chat(ctx, strings.Join(cmd.Args().Slice(), " "), os.Stdout); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}
}

// UploadCommand creates the upload command.
func UploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a PDF document",
		ArgsUsage: "<file.pdf>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, "file")
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(path) //nolint:gosec // user-supplied path is the point
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			res, err := a.assistant.Upload(ctx, path, f)
			if err != nil {
				return err
			}
			msg := res.Message
			if msg == "" {
				msg = "File uploaded"
			}
			fmt.Println(msg)
			if res.FileURL != "" {
				fmt.Println(res.FileURL)
			}
			return nil
		},
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.Args().First())
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
