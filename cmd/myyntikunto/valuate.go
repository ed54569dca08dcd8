package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/valuatum/myyntikunto/internal/config"
	"github.com/valuatum/myyntikunto/internal/dcf"
	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/export"
)

func valuateCommand() *cli.Command {
	return &cli.Command{
		Name:  "valuate",
		Usage: "run a valuation from a JSON input file without a database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "valuation input JSON (- for stdin)", Required: true},
			&cli.StringFlag{Name: "xlsx", Usage: "also write the report workbook to this path"},
			&cli.BoolFlag{Name: "markdown", Usage: "print a markdown report instead of JSON"},
			&cli.StringFlag{Name: "company", Usage: "company name for the report"},
		},
		Action: func(c *cli.Context) error {
			var src io.Reader = os.Stdin
			if path := c.String("input"); path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer f.Close()
				src = f
			}

			eng, err := newEngine(config.Load())
			if err != nil {
				return err
			}
			opts := valuateOptions{
				company:  c.String("company"),
				markdown: c.Bool("markdown"),
			}
			if path := c.String("xlsx"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating workbook: %w", err)
				}
				defer f.Close()
				opts.xlsx = f
			}
			return runValuate(eng, src, c.App.Writer, opts)
		},
	}
}

// newEngine builds the engine from validated configuration.
func newEngine(cfg config.Config) (*engine.Engine, error) {
	if problems := cfg.DCF.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid DCF configuration: %v", problems)
	}
	return engine.New(cfg.DCF, dcf.DefaultScenarios()), nil
}

type valuateOptions struct {
	company  string
	markdown bool
	xlsx     io.Writer // optional
}

// runValuate reads one engine input and writes the result.
func runValuate(eng *engine.Engine, src io.Reader, dst io.Writer, opts valuateOptions) error {
	var in engine.Input
	if err := json.NewDecoder(src).Decode(&in); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	out, err := eng.Run(in)
	if err != nil {
		return err
	}
	slog.Info("valuation complete", "summary", engine.Summary(out), "confidence", out.Confidence)

	view := export.View{CompanyName: opts.company, CreatedAt: time.Now(), Input: in, Output: out}
	if opts.xlsx != nil {
		if err := export.WriteXLSX(opts.xlsx, view); err != nil {
			return err
		}
	}

	if opts.markdown {
		_, err := io.WriteString(dst, export.Markdown(view))
		return err
	}
	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
