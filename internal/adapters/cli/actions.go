package cliadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	mcpadapter "github.com/kirillkom/pdf-highlights/internal/adapters/mcp"
	"github.com/kirillkom/pdf-highlights/internal/bootstrap"
	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/export"
	"github.com/kirillkom/pdf-highlights/internal/observability/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func ExtractAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: highlights extract [--format text|json|yaml] [--xlsx OUT] FILE", 2)
	}
	path := c.Args().First()
	format := strings.ToLower(c.String("format"))
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", format), 2)
	}

	logger := logging.New(errWriter(c), appName, c.String("log-level"), "text")
	strict := c.Bool("strict")
	extractor := bootstrap.NewExtractor(c.Bool("validate") || strict, strict, logger)

	var progress io.Writer = errWriter(c)
	if c.Bool("quiet") {
		progress = io.Discard
	}
	result := extractor.Start(c.Context, path).Notify(&progressPrinter{w: progress, path: path})
	if !result.OK() {
		return cli.Exit(result.Message(), 1)
	}

	if out := c.String("xlsx"); out != "" {
		if err := writeWorkbook(out, path, result.Records); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	if err := writeRecords(c.App.Writer, format, result.Records); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func ClassifyAction(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: highlights classify R G B", 2)
	}
	var channels [3]float64
	for i := range channels {
		v, err := strconv.ParseFloat(c.Args().Get(i), 64)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid channel %q: %v", c.Args().Get(i), err), 2)
		}
		channels[i] = v
	}
	color := domain.RGB{R: channels[0], G: channels[1], B: channels[2]}
	_, err := fmt.Fprintln(c.App.Writer, domain.Classify(color))
	return err
}

func MCPAction(c *cli.Context) error {
	// stdout carries the protocol, so diagnostics stay on stderr.
	logger := logging.New(errWriter(c), appName, c.String("log-level"), "text")
	extractor := bootstrap.NewExtractor(false, false, logger)
	return mcpadapter.NewServer(extractor, c.App.Version, logger).ServeStdio()
}

type progressPrinter struct {
	w    io.Writer
	path string
}

func (p *progressPrinter) OnProgress(current, total int) {
	fmt.Fprintf(p.w, "%s: page %d/%d\n", p.path, current, total)
}

func (p *progressPrinter) OnSuccess(records []domain.HighlightRecord) {
	fmt.Fprintf(p.w, "%s: %d highlights\n", p.path, len(records))
}

func (p *progressPrinter) OnFailure(message string) {
	fmt.Fprintf(p.w, "%s: failed: %s\n", p.path, message)
}

func writeRecords(w io.Writer, format string, records []domain.HighlightRecord) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PAGE\tCATEGORY\tTEXT\tCOMMENT")
		for _, r := range records {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Page, r.Category, r.Text, r.Comment)
		}
		return tw.Flush()
	}
}

func writeWorkbook(out, source string, records []domain.HighlightRecord) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()
	return export.NewXLSXWriter().Export(f, source, records)
}
