package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/docrag"
	"github.com/poiesic/docrag/ingestion"
	"github.com/poiesic/docrag/progress"
	"github.com/poiesic/docrag/search"
	"github.com/poiesic/docrag/watch"
	"github.com/urfave/cli/v2"
)

const watchDebounce = watch.DefaultDebounce

// openEngine loads the configuration and builds an engine from it.
func openEngine(c *cli.Context, opts ...docrag.EngineOption) (*docrag.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return docrag.NewEngine(cfg, opts...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func ingestCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Ingest(ctx, progress.DefaultWriter())
	if err != nil {
		return err
	}

	printReport(c.App.Writer, report, engine.Config().VectorStorePath)
	return nil
}

func printReport(w io.Writer, r *ingestion.Report, storePath string) {
	fmt.Fprintf(w, "Indexed %d chunks from %d documents", r.Chunks, r.Documents)
	if r.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", r.Skipped)
	}
	fmt.Fprintf(w, " in %v\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Collection : %s\n", r.Collection)
	fmt.Fprintf(w, "Path       : %s\n", storePath)
	fmt.Fprintf(w, "Embedding  : %s\n", r.Model)
	fmt.Fprintf(w, "Chunking   : size=%d, overlap=%d\n", r.ChunkSize, r.ChunkOverlap)
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required: docrag ask <question...>")
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c, docrag.WithReadOnlyStore())
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher(ctx)
	if err != nil {
		return err
	}

	answer, err := searcher.Ask(ctx, question)
	if err != nil {
		return err
	}
	printAnswer(c.App.Writer, answer)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c, docrag.WithReadOnlyStore())
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher(ctx)
	if err != nil {
		return err
	}
	if err := searcher.CheckModel(ctx); err != nil {
		return err
	}
	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}

	cfg := engine.Config()
	out := c.App.Writer
	fmt.Fprintf(out, "Store: %s | collection='%s' | vectors=%d\n", cfg.VectorStorePath, stats.Collection, stats.Count)
	fmt.Fprintf(out, "Embed: %s | Completion: %s/%s | top_k=%d\n",
		cfg.EmbeddingModelID, cfg.CompletionProvider, cfg.CompletionModelID, cfg.TopK)
	fmt.Fprintf(out, "Type 'exit' to quit.\n\n")

	return chatLoop(ctx, searcher, c.App.Reader, out)
}

// chatLoop reads questions line by line until exit, quit or end of input.
// Blank lines re-prompt and failed completions are reported without ending
// the loop. Any other error ends the session.
func chatLoop(ctx context.Context, searcher *search.Searcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Question> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "exit" || q == "quit" {
			return nil
		}

		answer, err := searcher.Ask(ctx, question)
		switch {
		case errors.Is(err, search.ErrEmptyQuestion):
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, search.ErrCompletionFailed):
			fmt.Fprintf(out, "\nError: %v\n\n", err)
			continue
		case err != nil:
			return err
		}
		printAnswer(out, answer)
	}
}

func printAnswer(w io.Writer, answer *search.Answer) {
	fmt.Fprintf(w, "\n%s\n", answer.Text)
	fmt.Fprintf(w, "\nRetrieved chunks:\n")
	for i, r := range answer.Results {
		fmt.Fprintf(w, "  %d. %s | chunk=%d | distance=%.4f\n", i+1, r.Metadata.Source, r.Metadata.Chunk, r.Distance)
	}
	fmt.Fprintln(w)
}

func statsCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c, docrag.WithReadOnlyStore())
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Collection : %s\n", stats.Collection)
	fmt.Fprintf(out, "Path       : %s\n", engine.Config().VectorStorePath)
	fmt.Fprintf(out, "Records    : %d\n", stats.Count)
	if m := stats.Manifest; m != nil {
		fmt.Fprintf(out, "Embedding  : %s (%d dimensions)\n", m.EmbeddingModel, m.Dimensions)
		fmt.Fprintf(out, "Created    : %s\n", m.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Updated    : %s\n", m.UpdatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Collections: %s\n", strings.Join(stats.Collections, ", "))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	reembedder, err := engine.NewReembedder(ctx, c.App.ErrWriter, progress.DefaultWriter())
	if err != nil {
		return err
	}

	if _, err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	storePath := engine.Config().VectorStorePath
	w, err := engine.NewWatcher(progress.DefaultWriter(), func(r *ingestion.Report) {
		printReport(c.App.Writer, r, storePath)
	}, watch.WithDebounce(c.Duration("debounce")))
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx)
}
