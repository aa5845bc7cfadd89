package cliadapter

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

const appName = "highlights"

// NewApp builds the highlights command line. Output goes to stdout and stderr
// unless the caller swaps App.Writer and App.ErrWriter.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:      appName,
		Usage:     "extract and categorize highlight annotations from PDF files",
		Version:   version,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level for diagnostics on stderr (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "print the highlights of a PDF file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   formatText,
						Usage:   "output format: text, json or yaml",
					},
					&cli.StringFlag{
						Name:  "xlsx",
						Usage: "also write the records to this spreadsheet file",
					},
					&cli.BoolFlag{
						Name:    "validate",
						Usage:   "check PDF structure before extracting",
						EnvVars: []string{"VALIDATE_PDF"},
					},
					&cli.BoolFlag{
						Name:    "strict",
						Usage:   "use strict structural validation (implies --validate)",
						EnvVars: []string{"STRICT_VALIDATION"},
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "do not print progress to stderr",
					},
				},
				Action: ExtractAction,
			},
			{
				Name:      "classify",
				Usage:     "print the category of an RGB colour with channels in [0,1]",
				ArgsUsage: "R G B",
				Action:    ClassifyAction,
			},
			{
				Name:   "mcp",
				Usage:  "serve the extraction tools over MCP on stdin/stdout",
				Action: MCPAction,
			},
		},
	}
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
