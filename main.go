package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jo-hoe/go-custom-uploader/app/config"
	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/output"
	"github.com/jo-hoe/go-custom-uploader/app/template"
	"github.com/jo-hoe/go-custom-uploader/app/transport"
	"github.com/jo-hoe/go-custom-uploader/app/uploader"
)

type definitionList []string

func (l *definitionList) String() string { return strings.Join(*l, ",") }

func (l *definitionList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var definitions definitionList
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	envPath := flag.String("env", ".env", "Path to a .env file loaded before the configuration")
	text := flag.String("text", "", "Upload this text instead of files ('-' reads stdin)")
	textName := flag.String("name", "", "File name used for text uploads")
	format := flag.String("output", "", "Output format (text or json); overrides the configuration")
	flag.Var(&definitions, "d", "Definition file (JSON or YAML); repeat to chain requests")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file ...]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load(*envPath)

	cfg, err := getConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration - error: %s\n", err)
		os.Exit(2)
	}
	if len(definitions) > 0 {
		cfg.Definitions = definitions
	}
	if *format != "" {
		cfg.Output = *format
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := run(ctx, cfg, *text, *textName, flag.Args())
	if err != nil {
		slog.Error("upload aborted", "error", err)
		os.Exit(2)
	}

	formatter, err := output.NewFormatter(cfg.Output)
	if err != nil {
		slog.Error("invalid output format", "error", err)
		os.Exit(2)
	}
	if err := formatter.Write(os.Stdout, results); err != nil {
		slog.Error("could not write results", "error", err)
		os.Exit(2)
	}
	for _, r := range results {
		if r.State != uploader.StateDone {
			os.Exit(1)
		}
	}
}

func getConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.NewConfigFromFile(path)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(ctx context.Context, cfg *config.Config, text, textName string, files []string) ([]*uploader.Result, error) {
	if len(cfg.Definitions) == 0 {
		return nil, fmt.Errorf("no definition given; use -d or the 'definitions' configuration field")
	}

	client, err := transport.NewHTTPClient(ctx, cfg.Auth, cfg.TimeoutDuration())
	if err != nil {
		return nil, err
	}
	t := transport.NewHTTPTransport(client)

	steps := make([]*uploader.Uploader, 0, len(cfg.Definitions))
	for _, path := range cfg.Definitions {
		def, err := definition.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not load definition '%s': %w", path, err)
		}
		u, err := uploader.New(def, t)
		if err != nil {
			return nil, fmt.Errorf("definition '%s': %w", path, err)
		}
		steps = append(steps, u)
	}

	contexts, closeAll, err := newContexts(text, textName, files, cfg.MaxFileSizeBytes)
	defer closeAll()
	if err != nil {
		return nil, err
	}

	if len(steps) == 1 {
		items := uploader.NewBatch(steps[0], cfg.Concurrency, cfg.RateLimit).Run(ctx, contexts)
		results := make([]*uploader.Result, 0, len(items))
		for _, item := range items {
			results = append(results, item.Result)
		}
		return results, nil
	}

	// chained requests run one input at a time
	results := make([]*uploader.Result, 0, len(contexts))
	for _, tctx := range contexts {
		chain, err := uploader.Chain(ctx, steps, tctx)
		if len(chain) == 0 {
			return nil, err
		}
		results = append(results, chain[len(chain)-1])
	}
	return results, nil
}

// newContexts opens the inputs of this run. The returned func closes every opened file.
func newContexts(text, textName string, files []string, maxFileSize int64) ([]*template.Context, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			if err := f.Close(); err != nil {
				slog.Error("error closing file", "file", f.Name(), "error", err)
			}
		}
	}

	if text != "" {
		if len(files) > 0 {
			return nil, closeAll, fmt.Errorf("either -text or files can be uploaded, not both")
		}
		if text == "-" {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, closeAll, fmt.Errorf("could not read stdin: %w", err)
			}
			text = string(b)
		}
		return []*template.Context{{FileName: textName, InputText: text}}, closeAll, nil
	}

	if len(files) == 0 {
		return nil, closeAll, fmt.Errorf("nothing to upload; pass files or -text")
	}
	contexts := make([]*template.Context, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			return nil, closeAll, err
		}
		if info.IsDir() {
			return nil, closeAll, fmt.Errorf("'%s' is a directory", path)
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			return nil, closeAll, fmt.Errorf("'%s' is %d bytes which exceeds maxFileSize (%d bytes)", path, info.Size(), maxFileSize)
		}
		contexts = append(contexts, &template.Context{FileName: filepath.Base(path), File: f})
	}
	return contexts, closeAll, nil
}
