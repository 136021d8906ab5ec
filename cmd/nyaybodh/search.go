package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/facet"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
	"github.com/nyaybodh/nyaybodh/internal/render"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

// SearchCommand creates the search command.
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search case law",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Search type: entity or semantic",
				Value:   string(mode.Entity),
			},
			&cli.StringSliceFlag{Name: "date", Usage: "Keep results from these years"},
			&cli.StringSliceFlag{Name: "party", Usage: "Keep results naming these parties"},
			&cli.StringSliceFlag{Name: "judge", Usage: "Keep results heard by these judges"},
			&cli.BoolFlag{Name: "refresh", Usage: "Bypass the results cache"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of formatted results"},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Read queries and filter toggles from stdin",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			t, err := mode.Parse(cmd.String("type"))
			if err != nil {
				return err
			}

			opts := appOptions{}
			if !cmd.Bool("json") {
				opts.notifier = render.NewToaster(os.Stderr)
			}
			a, err := newApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			page := a.search.NewPage()
			if cmd.Bool("interactive") {
				return runInteractive(ctx, page, t, os.Stdin, os.Stdout)
			}

			query := strings.Join(cmd.Args().Slice(), " ")
			var submit []searchuc.SubmitOption
			if cmd.Bool("refresh") {
				submit = append(submit, searchuc.Refresh())
			}
			st, err := page.Submit(ctx, query, t, submit...)
			if err != nil {
				return err
			}
			page.SetSelection(filter.NewSelection(
				cmd.StringSlice("date"), cmd.StringSlice("party"), cmd.StringSlice("judge"),
			))

			if cmd.Bool("json") {
				if err := writeSearchJSON(os.Stdout, page.View()); err != nil {
					return err
				}
			} else {
				fmt.Print(render.Page(page.View()))
			}
			if st.HasError() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

type searchOutput struct {
	Query     string        `json:"query"`
	Type      mode.Type     `json:"type"`
	Status    string        `json:"status"`
	FromCache bool          `json:"from_cache"`
	Error     string        `json:"error,omitempty"`
	Results   result.Set    `json:"results"`
	Visible   result.Set    `json:"visible"`
	Facets    facet.Options `json:"facets"`
}

func writeSearchJSON(w io.Writer, v searchuc.View) error {
	out := searchOutput{
		Query:     v.State.Query,
		Type:      v.State.Type,
		Status:    string(v.State.Status),
		FromCache: v.State.FromCache,
		Results:   v.State.Results,
		Visible:   v.Visible,
		Facets:    v.Facets,
	}
	if v.State.HasError() {
		out.Error = v.State.Message
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

const interactiveHelp = `Type a query to search. Commands:
  :type entity|semantic   switch search type
  :date <year>            toggle a year filter
  :party <name>           toggle a party filter
  :judge <name>           toggle a judge filter
  :clear                  clear all filters
  :refresh                rerun the last query without the cache
  :help                   show this help
  :quit                   exit
`

var errQuit = errors.New("quit")

// repl is the interactive results page.
type repl struct {
	page *searchuc.Page
	typ  mode.Type
	last string
	out  io.Writer
}

func runInteractive(ctx context.Context, page *searchuc.Page, t mode.Type, in io.Reader, out io.Writer) error {
	r := &repl{page: page, typ: t, out: out}
	fmt.Fprint(out, interactiveHelp)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		err := r.handle(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return sc.Err()
}

func (r *repl) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		return r.submit(ctx, line)
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q", "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprint(r.out, interactiveHelp)
	case "type":
		t, err := mode.Parse(arg)
		if err != nil {
			return err
		}
		r.typ = t
		fmt.Fprintf(r.out, "search type: %s\n", t)
	case "refresh":
		if r.last == "" {
			return errors.New("nothing to refresh")
		}
		return r.submit(ctx, r.last, searchuc.Refresh())
	case "clear":
		r.page.ClearSelection()
		r.print()
	case "date", "year", "party", "judge":
		d, err := filter.ParseDimension(name)
		if err != nil {
			return err
		}
		if arg == "" {
			return fmt.Errorf("usage: :%s <value>", name)
		}
		if _, err := r.page.Toggle(d, arg); err != nil {
			return err
		}
		r.print()
	default:
		return fmt.Errorf("unknown command %q, try :help", name)
	}
	return nil
}

func (r *repl) submit(ctx context.Context, query string, opts ...searchuc.SubmitOption) error {
	if _, err := r.page.Submit(ctx, query, r.typ, opts...); err != nil {
		return err
	}
	r.last = query
	r.print()
	return nil
}

func (r *repl) print() {
	fmt.Fprint(r.out, render.Page(r.page.View()))
}
