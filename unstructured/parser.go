// Package unstructured provides a kbase.DocumentParser backed by the
// Unstructured partition API.
package unstructured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/kbase"
)

// partitionPath is the partition endpoint of the Unstructured API.
const partitionPath = "/general/v0/general"

// DefaultParseTimeout bounds one partition request. hi_res processing with
// OCR is slow on scanned documents.
const DefaultParseTimeout = 5 * time.Minute

// Compile-time interface verification.
var _ kbase.DocumentParser = (*Parser)(nil)

// Parser implements kbase.DocumentParser using the Unstructured partition
// HTTP API with the hi_res strategy, which runs layout detection so tables
// and reading order survive.
type Parser struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// Option configures a Parser.
type Option func(*Parser)

// WithAPIKey sets the API key sent with partition requests. Hosted
// deployments require it; local ones ignore it.
func WithAPIKey(key string) Option {
	return func(p *Parser) {
		p.apiKey = key
	}
}

// WithHTTPClient sets the HTTP client used for partition requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Parser) {
		p.client = client
	}
}

// NewParser creates a Parser talking to the Unstructured API at baseURL.
func NewParser(baseURL string, opts ...Option) *Parser {
	p := &Parser{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: DefaultParseTimeout}
	}
	return p
}

// element is one partitioned block returned by the API.
type element struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Metadata struct {
		PageNumber int `json:"page_number"`
	} `json:"metadata"`
}

// Parse partitions one local document into page records, one per detected
// page number. Table elements become table fragments on their page; all
// other element text joins the page body in reading order.
func (p *Parser) Parse(ctx context.Context, path string) ([]*kbase.Page, error) {
	if path == "" {
		return nil, kbase.Errorf(kbase.EINVALID, "document path required")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, kbase.Errorf(kbase.EINVALID, "cannot open document %q: %v", path, err)
	}
	defer file.Close()

	elements, err := p.partition(ctx, filepath.Base(path), file)
	if err != nil {
		return nil, err
	}

	return assemblePages(path, elements), nil
}

// partition uploads the file and returns the element list.
func (p *Parser) partition(ctx context.Context, filename string, content io.Reader) ([]element, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("files", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := form.WriteField("strategy", "hi_res"); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+partitionPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("unstructured-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, kbase.Errorf(kbase.EUNAVAILABLE, "partition API returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var elements []element
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("failed to decode partition response: %w", err)
	}

	return elements, nil
}

// assemblePages groups elements by page number into page records, in page
// order. Elements without a page number land on page 1.
func assemblePages(path string, elements []element) []*kbase.Page {
	type draft struct {
		texts  []string
		tables []string
	}
	drafts := make(map[int]*draft)

	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}

		n := el.Metadata.PageNumber
		if n <= 0 {
			n = 1
		}
		d := drafts[n]
		if d == nil {
			d = &draft{}
			drafts[n] = d
		}

		if el.Type == "Table" {
			d.tables = append(d.tables, text)
		} else {
			d.texts = append(d.texts, text)
		}
	}

	numbers := make([]int, 0, len(drafts))
	for n := range drafts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([]*kbase.Page, 0, len(numbers))
	for _, n := range numbers {
		d := drafts[n]
		text := strings.Join(d.texts, "\n\n")
		pages = append(pages, &kbase.Page{
			Origin:      fmt.Sprintf("%s#page=%d", path, n),
			Kind:        kbase.SourcePDF,
			Text:        text,
			Tables:      d.tables,
			ContentHash: kbase.HashText(text),
		})
	}

	return pages
}
