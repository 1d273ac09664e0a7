package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/crawl"
	"github.com/fwojciec/kbase/gemini"
	"github.com/fwojciec/kbase/goquery"
	"github.com/fwojciec/kbase/gtranslate"
	"github.com/fwojciec/kbase/htmltomarkdown"
	kbhttp "github.com/fwojciec/kbase/http"
	"github.com/fwojciec/kbase/ingest"
	kbslog "github.com/fwojciec/kbase/slog"
	"github.com/fwojciec/kbase/sqlite"
	"github.com/fwojciec/kbase/trafilatura"
	"github.com/fwojciec/kbase/unstructured"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the vector store.
	DB *sqlite.DB

	// Store for end-to-end testing.
	Store kbase.VectorStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("kbase"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'kbase --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set KBASE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Store = sqlite.NewStore(m.DB)
	deps.Store = m.Store

	// Commands that embed need the Gemini API.
	var embedder kbase.Embedder
	if cmd == "ingest" || cmd == "query" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		embedder = gemini.NewEmbedder(client)
	}

	if cmd == "ingest" {
		fetcher := kbhttp.NewFetcher()
		defer fetcher.Close()

		var sitemaps kbase.SitemapService = kbhttp.NewSitemapService(nil)
		if os.Getenv("KBASE_DEBUG") != "" {
			logger := slog.New(slog.NewTextHandler(stderr, nil))
			sitemaps = kbslog.NewLoggingSitemapService(sitemaps, logger)
			embedder = kbslog.NewLoggingEmbedder(embedder, logger)
		}

		var translator kbase.Translator
		if cli.Ingest.TranslateTo != "" {
			key := os.Getenv("GOOGLE_TRANSLATE_API_KEY")
			if key == "" {
				fmt.Fprintln(stderr, "GOOGLE_TRANSLATE_API_KEY environment variable not set")
				return fmt.Errorf("GOOGLE_TRANSLATE_API_KEY not set")
			}
			svc, err := translate.NewService(ctx, option.WithAPIKey(key))
			if err != nil {
				return fmt.Errorf("failed to create translation service: %w", err)
			}
			translator = gtranslate.NewTranslator(svc)
		}

		var docParser kbase.DocumentParser
		if len(cli.Ingest.PDF) > 0 {
			baseURL := os.Getenv("UNSTRUCTURED_API_URL")
			if baseURL == "" {
				baseURL = defaultUnstructuredURL
			}
			docParser = unstructured.NewParser(baseURL,
				unstructured.WithAPIKey(os.Getenv("UNSTRUCTURED_API_KEY")))
		}

		tokenCounter, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}

		converter := htmltomarkdown.NewConverter()

		deps.Ingestor = &ingest.Ingestor{
			Crawler: &crawl.Crawler{
				Sitemaps:    sitemaps,
				Fetcher:     fetcher,
				Extractor:   trafilatura.NewExtractor(converter),
				Links:       goquery.NewLinkExtractor(),
				Translator:  translator,
				Filter:      kbase.NewURLFilter(),
				Limiter:     crawl.NewDomainLimiter(1.0),
				Concurrency: cli.Ingest.Concurrency,
				MaxPages:    cli.Ingest.MaxPages,
				MaxDepth:    cli.Ingest.MaxDepth,
			},
			Parser:   docParser,
			Embedder: embedder,
			Store:    m.Store,
			Tokens:   tokenCounter,
		}
	}

	if cmd == "query" {
		deps.Searcher = &ingest.Searcher{
			Embedder: embedder,
			Store:    m.Store,
		}
	}

	return kongCtx.Run(deps)
}

// tokenizerModel is used for token counting.
const tokenizerModel = "gemini-2.5-flash"

// defaultUnstructuredURL points at a local Unstructured API container.
const defaultUnstructuredURL = "http://localhost:8000"

func defaultDBPath() string {
	if path := os.Getenv("KBASE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kbase.db"
	}
	dir := filepath.Join(home, ".kbase")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "kbase.db")
}
