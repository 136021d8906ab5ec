package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
	"github.com/nyaybodh/nyaybodh/internal/render"
)

// GenerateCommand creates the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Fill a legal document template and download the PDF",
		ArgsUsage: "<kind>",
		Description: "Answers come from --from (YAML, nested maps and lists allowed) and repeated\n" +
			"--field key=value flags, which win. Nested keys are dotted: land_details.boundaries.north,\n" +
			"executors.0.name. Run \"nyaybodh generate list\" for the kinds.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "field",
				Aliases: []string{"f"},
				Usage:   "Template answer as key=value (repeatable)",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Read answers from a YAML file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the PDF to this file (default: <kind>.pdf)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store the PDF in the configured file storage instead",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List document kinds",
				Action: withApp(func(_ context.Context, _ *cli.Command, a *app) error {
					fmt.Print(render.Templates(a.docs.Templates()))
					return nil
				}),
			},
			{
				Name:      "fields",
				Usage:     "List the answers a document kind needs",
				ArgsUsage: "<kind>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					kind, err := requireArg(cmd, "kind")
					if err != nil {
						return err
					}
					tmpl, err := domdoc.Lookup(kind)
					if err != nil {
						return err
					}
					fmt.Print(render.TemplateFields(tmpl))
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, err := requireArg(cmd, "kind")
			if err != nil {
				return err
			}
			answers, err := collectAnswers(cmd.String("from"), cmd.StringSlice("field"))
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Bool("save") {
				saved, err := a.docs.Save(ctx, kind, answers)
				if err != nil {
					return err
				}
				fmt.Printf("Stored %s (%d bytes) at %s\n", saved.FileName, len(saved.Data), saved.Path)
				return nil
			}

			doc, err := a.docs.Generate(ctx, kind, answers)
			if err != nil {
				return err
			}
			out := cmd.String("output")
			if out == "" {
				out = doc.FileName
			}
			if err := os.WriteFile(out, doc.Data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(doc.Data))
			return nil
		},
	}
}

// collectAnswers merges the YAML file under the --field flags.
// Scalars keep their source text, so dates and zero-padded numbers pass through unchanged.
func collectAnswers(from string, fields []string) (map[string]string, error) {
	answers := make(map[string]string)
	if from != "" {
		data, err := os.ReadFile(filepath.Clean(from))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", from, err)
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", from, err)
		}
		if len(doc.Content) > 0 {
			root := doc.Content[0]
			if root.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%s: top level must be a mapping", from)
			}
			flatten("", root, answers)
		}
	}
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("--field %q: expected key=value", f)
		}
		answers[strings.TrimSpace(k)] = v
	}
	return answers, nil
}

func flatten(prefix string, n *yaml.Node, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			flatten(join(n.Content[i].Value), n.Content[i+1], out)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			flatten(join(strconv.Itoa(i)), item, out)
		}
	case yaml.AliasNode:
		flatten(prefix, n.Alias, out)
	default:
		if n.ShortTag() == "!!null" {
			out[prefix] = ""
			return
		}
		out[prefix] = n.Value
	}
}
