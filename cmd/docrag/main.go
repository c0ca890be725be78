// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docrag",
		Usage: "Ask questions about a directory of PDF documents",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"DOCRAG_LOG_LEVEL"},
			},
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load settings from a YAML or TOML file",
				EnvVars: []string{"DOCRAG_CONFIG"},
			},
		}, configFlags()...),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Extract, chunk and embed every matching document into the collection",
				Action: ingestCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question from the ingested documents",
				ArgsUsage: "<question...>",
				Action:    askCommand,
			},
			{
				Name:   "chat",
				Usage:  "Answer questions interactively until 'exit' or 'quit'",
				Action: chatCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show the record count and embedding manifest of the collection",
				Action: statsCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed every record with the configured embedding model",
				Action: reembedCommand,
			},
			{
				Name:   "watch",
				Usage:  "Ingest, then re-ingest whenever matching documents change",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period after a change before re-ingesting",
						Value: watchDebounce,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
