// Package main is the Kensa CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hyperjump/kensa/internal/cli"
	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/docid"
	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/grading"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/server"
	"github.com/hyperjump/kensa/internal/storage"
	"github.com/hyperjump/kensa/internal/watcher"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kensa/config.yaml"

// loadConfig loads config from path. When path is the default and ./config.yaml
// exists, that file is used instead so the binary works from a checkout.
// A missing default config is not an error: built-in defaults apply.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := &config.Config{}
			config.LoadDotEnv(".")
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "similarity":
		runSimilarity()
	case "grade":
		runGrade()
	case "vectors":
		runVectors()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("kensa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and creates the logger. CLI commands log to stderr at
// warn level unless debug is set, so their stdout stays parseable.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Debug && !debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (prompts, model replies, grading)")
	host := fs.String("host", "", "listen host (overrides config)")
	port := fs.Int("port", 0, "listen port (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("embedding_backend", cfg.Embedding.Backend),
	)

	components, err := initializeComponents(context.Background(), cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.services(cfg, logger), &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves flags (and their values) that follow positional arguments
// to the front so that flag.Parse sees them: "kensa grade cv.pdf --job jd.txt".
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// readDocument reads path ("-" for stdin) and extracts its text.
func readDocument(ext *extract.Extractor, path string) (models.Document, error) {
	var (
		content []byte
		err     error
		name    = filepath.Base(path)
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
		name = "stdin"
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	text, err := ext.ExtractUpload(name, content)
	if err != nil {
		return models.Document{}, fmt.Errorf("extract %s: %w", name, err)
	}
	return models.Document{Name: name, ID: docid.ContentID(content), Text: text}, nil
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kensa extract [flags] <file|->")
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	keywords, err := newKeywordExtractor(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	doc, err := readDocument(extract.NewExtractor(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(keywords.Extract(doc.Text))
}

func runSimilarity() {
	fs := flag.NewFlagSet("similarity", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: kensa similarity [flags] <file-a> <file-b>")
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	a, err := readDocument(components.Extractor, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	b, err := readDocument(components.Extractor, fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	score, err := components.Scorer.Similarity(ctx, a.Text, b.Text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Similarity failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(score)
}

func runGrade() {
	fs := flag.NewFlagSet("grade", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	jobPath := fs.String("job", "", "job description file (required)")
	outputFormat := fs.String("output", "text", "output format: text (table), compact (grade<TAB>file per line), or json")
	sortByGrade := fs.Bool("sort", false, "sort by grade, highest first (default: argument order)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *jobPath == "" || fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: kensa grade --job <jd-file> [flags] <resume>...")
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	jd, err := readDocument(components.Extractor, *jobPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	docs := make([]models.Document, 0, fs.NArg())
	for _, path := range fs.Args() {
		doc, err := readDocument(components.Extractor, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		docs = append(docs, doc)
	}

	records, err := components.Grader.Rank(ctx, jd.Text, docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grading failed: %v\n", err)
		os.Exit(1)
	}
	if *sortByGrade {
		grading.SortByGrade(records)
	}
	if err := cli.WriteGrades(os.Stdout, records, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runVectors() {
	if len(os.Args) < 3 || os.Args[2] != "import" {
		fmt.Fprintln(os.Stderr, "Usage: kensa vectors import [flags] <vectors.txt>")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("vectors import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dbPath := fs.String("db", "", "vector database path (default: embedding.vectors_db from config)")
	_ = fs.Parse(argsReorder(os.Args[3:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kensa vectors import [flags] <vectors.txt>")
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	target := *dbPath
	if target == "" {
		target = cfg.Embedding.VectorsDB
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "No vector database path: set embedding.vectors_db or pass --db")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open vectors file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	store, err := storage.NewSQLiteVectors(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open vector database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	start := time.Now()
	n, err := store.Import(context.Background(), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed after %d vectors: %v\n", n, err)
		os.Exit(1)
	}
	size, _ := store.DiskUsage()
	fmt.Printf("Imported %d vectors (%d dimensions) into %s in %s (%s on disk)\n",
		n, store.Dimensions(), target, time.Since(start).Round(time.Millisecond), formatBytes(size))
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file events)")
	jobPath := fs.String("job", "", "job description file (required)")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if *jobPath == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kensa watch --job <jd-file> [flags] <dir>")
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	jd, err := readDocument(components.Extractor, *jobPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var outMu sync.Mutex
	emit := func(rec models.GradeRecord) {
		outMu.Lock()
		defer outMu.Unlock()
		_ = cli.WriteGradeLine(os.Stdout, rec)
	}
	inbox := watcher.NewInbox(components.Extractor, components.Grader, jd.Text, emit, logger)

	opts := []watcher.WatcherOption{
		watcher.WithExtensions(cfg.Watch.Extensions),
		watcher.WithRecursive(cfg.Watch.RecursiveOrDefault()),
	}
	if cfg.Debug || *debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(fs.Arg(0), inbox.OnFile(ctx), opts...)
	if err := w.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start watcher: %v\n", err)
		os.Exit(1)
	}
	defer w.Stop()
	w.SyncExistingFiles()
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", w.Root())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func printUsage() {
	fmt.Println(strings.TrimSpace(`
kensa - Resume screening: key phrases, similarity and grades

Usage:
  kensa server [flags]                          Start the HTTP server
  kensa extract [flags] <file|->                Print the key phrases of a document
  kensa similarity [flags] <file-a> <file-b>    Print the similarity of two documents
  kensa grade --job <jd> [flags] <resume>...    Grade resumes against a job description
  kensa vectors import [flags] <vectors.txt>    Import GloVe/word2vec text vectors into SQLite
  kensa watch --job <jd> [flags] <dir>          Grade resumes as they land in a directory
  kensa version                                 Show version
  kensa help                                    Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kensa/config.yaml, or ./config.yaml if present)
  --debug            Enable debug logging

Server Flags:
  --host string      Listen host (overrides config)
  --port int         Listen port (overrides config)

Grade Flags:
  --job string       Job description file (required)
  --output string    Output format: text, compact or json (default: text)
  --sort             Sort by grade, highest first

Vectors Flags:
  --db string        Vector database path (default: embedding.vectors_db)

Examples:
  kensa server --port 8000
  kensa extract resume.pdf
  kensa grade --job jd.txt --sort resumes/*.pdf
  kensa grade --job jd.txt --output json alice.docx bob.pdf
  kensa vectors import --db ~/kensa/vectors.db glove.6B.300d.txt
  kensa watch --job jd.txt ~/inbox`))
}
