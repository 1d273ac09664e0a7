package main

import (
	"context"
	"io"

	"github.com/fwojciec/kbase"
	"github.com/fwojciec/kbase/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Store    kbase.VectorStore
	Ingestor *ingest.Ingestor
	Searcher *ingest.Searcher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Ingest      IngestCmd      `cmd:"" help:"Build a knowledge base from web and PDF sources"`
	Query       QueryCmd       `cmd:"" help:"Query a knowledge base"`
	Collections CollectionsCmd `cmd:"" help:"List knowledge base collections"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Name        string   `arg:"" help:"Knowledge base name"`
	URL         []string `short:"u" help:"Web root URL to crawl (repeatable)"`
	PDF         []string `short:"p" help:"Local PDF path to parse (repeatable)"`
	Recursive   bool     `short:"r" help:"Force recursive crawling even when a sitemap exists"`
	Overwrite   bool     `help:"Delete the existing collection before ingesting"`
	TranslateTo string   `name:"translate-to" help:"Translate pages to this ISO 639-1 language before extraction"`
	Concurrency int      `short:"c" default:"10" help:"Concurrent fetch limit"`
	MaxPages    int      `name:"max-pages" help:"Stop recursive crawls after this many pages (0 = unbounded)"`
	MaxDepth    int      `name:"max-depth" help:"Limit recursive crawl depth (0 = unbounded)"`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Name  string `arg:"" help:"Knowledge base name"`
	Query string `arg:"" help:"Query text"`
	TopK  int    `short:"k" name:"top-k" default:"5" help:"Number of results to return"`
}

// CollectionsCmd is the "collections" subcommand.
type CollectionsCmd struct{}
