// Package export runs the full document generation pipeline for one
// request: fetch template, extract fields, compute budget shares, inject
// values into the XML parts, and reassemble the archive. Each invocation is
// an independent request-scoped computation; nothing is shared or persisted.
package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thegrantai/hwpxgen/pkg/archive"
	"github.com/thegrantai/hwpxgen/pkg/budget"
	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/extract"
	"github.com/thegrantai/hwpxgen/pkg/field"
	"github.com/thegrantai/hwpxgen/pkg/inject"
	"github.com/thegrantai/hwpxgen/pkg/template"
)

// ContentType is the media type handed to the delivery collaborator with
// the finished bytes.
const ContentType = "application/hwp+zip"

// previewPath is the plain-text preview member, regenerated from the record
// instead of carrying the template's stale placeholder text.
const previewPath = "Preview/PrvText.txt"

// Request is one export invocation.
type Request struct {
	// Tree is the editor content to extract from.
	Tree *content.Tree

	// Template is the logical template variant name.
	Template string

	// FileName overrides the generated download filename. Optional.
	FileName string
}

// Diagnostics surfaces what the best-effort pipeline absorbed silently:
// unclassified tables, unresolved placeholders, and malformed spans. The
// document is still produced; callers decide whether to show these.
type Diagnostics struct {
	RequestID          string   `json:"request_id"`
	Tables             int      `json:"tables"`
	UnclassifiedTables int      `json:"unclassified_tables"`
	EmptyFields        int      `json:"empty_fields"`
	NormalizedTokens   int      `json:"normalized_tokens"`
	ReplacedTokens     int      `json:"replaced_tokens"`
	StrippedTokens     int      `json:"stripped_tokens"`
	Unresolved         []string `json:"unresolved,omitempty"`
}

// Result is the finished document plus its delivery metadata.
type Result struct {
	Data        []byte
	FileName    string
	ContentType string
	Record      field.Record
	Diagnostics Diagnostics
}

// Service wires the pipeline stages together.
type Service struct {
	fetcher template.Fetcher
	logger  *zap.Logger
	options *extract.Options
}

// NewService creates an export service. A nil logger disables logging; nil
// options use the built-in extraction defaults.
func NewService(fetcher template.Fetcher, logger *zap.Logger, options *extract.Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger,
		options: options,
	}
}

// Export runs the pipeline. Fatal failures (template fetch, archive sanity)
// abort with an error and no partial file; everything else completes best
// effort and is reported in the result's diagnostics.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.NewString()
	logger := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("template", req.Template))

	raw, err := s.fetcher.Fetch(ctx, req.Template)
	if err != nil {
		logger.Error("template fetch failed", zap.Error(err))
		return nil, fmt.Errorf("exporting document: %w", err)
	}

	parts, err := archive.ReadParts(raw)
	if err != nil {
		logger.Error("template archive unreadable", zap.Error(err))
		return nil, fmt.Errorf("exporting document: %w", err)
	}

	tree := req.Tree
	if tree == nil {
		tree = &content.Tree{}
	}
	record, stats := extract.Extract(tree, s.options)
	budget.Apply(record)

	diagnostics := Diagnostics{
		RequestID:          requestID,
		Tables:             stats.Tables,
		UnclassifiedTables: stats.UnclassifiedTables,
		EmptyFields:        stats.EmptyFields,
	}

	modified, injectStats, err := s.injectParts(ctx, parts, record)
	if err != nil {
		return nil, fmt.Errorf("exporting document: %w", err)
	}
	diagnostics.NormalizedTokens = injectStats.NormalizedTokens
	diagnostics.ReplacedTokens = injectStats.ReplacedTokens
	diagnostics.StrippedTokens = injectStats.StrippedTokens
	diagnostics.Unresolved = injectStats.Unresolved

	if _, ok := parts[previewPath]; ok {
		modified[previewPath] = previewText(record)
	}

	data, err := archive.Reassemble(parts, modified)
	if err != nil {
		logger.Error("archive reassembly failed", zap.Error(err))
		return nil, fmt.Errorf("exporting document: %w", err)
	}

	logger.Info("document exported",
		zap.Int("bytes", len(data)),
		zap.Int("tables", diagnostics.Tables),
		zap.Int("replaced_tokens", diagnostics.ReplacedTokens),
		zap.Int("unresolved", len(diagnostics.Unresolved)))

	return &Result{
		Data:        data,
		FileName:    fileName(req, record),
		ContentType: ContentType,
		Record:      record,
		Diagnostics: diagnostics,
	}, nil
}

// injectParts runs injection over every content XML part. Parts are
// independent, so they are processed concurrently; results are collected by
// path with no further coordination.
func (s *Service) injectParts(ctx context.Context, parts map[string][]byte, record field.Record) (map[string]string, inject.Stats, error) {
	var mu sync.Mutex
	modified := make(map[string]string)
	var merged inject.Stats
	unresolved := make(map[string]bool)

	group, ctx := errgroup.WithContext(ctx)
	for path, raw := range parts {
		if !injectable(path) {
			continue
		}
		path, raw := path, raw
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, stats := inject.Inject(string(raw), record, "")

			mu.Lock()
			defer mu.Unlock()
			modified[path] = result
			merged.NormalizedTokens += stats.NormalizedTokens
			merged.ReplacedTokens += stats.ReplacedTokens
			merged.StrippedTokens += stats.StrippedTokens
			for _, id := range stats.Unresolved {
				unresolved[id] = true
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, inject.Stats{}, err
	}

	for id := range unresolved {
		merged.Unresolved = append(merged.Unresolved, id)
	}
	sort.Strings(merged.Unresolved)
	return modified, merged, nil
}

// injectable reports whether a member carries authored content with
// placeholders. Container metadata and the version marker never do.
func injectable(path string) bool {
	if strings.HasPrefix(path, "META-INF/") {
		return false
	}
	return strings.HasPrefix(path, "Contents/") && strings.HasSuffix(path, ".xml")
}

// previewText renders the preview member from the record's headline fields.
func previewText(record field.Record) string {
	var lines []string
	if name := record.Get(field.KeyItemName); name != "" {
		lines = append(lines, name)
	}
	if summary := record.Get(field.KeyItemSummary); summary != "" {
		lines = append(lines, summary)
	}
	return strings.Join(lines, "\n")
}

// fileName picks the download filename: the caller's override, else the
// item name, else the template variant.
func fileName(req Request, record field.Record) string {
	name := req.FileName
	if name == "" {
		name = record.Get(field.KeyItemName)
	}
	if name == "" {
		name = req.Template
	}
	name = sanitizeFileName(name)
	if !strings.HasSuffix(name, ".hwpx") {
		name += ".hwpx"
	}
	return name
}

// sanitizeFileName strips characters that break downloads or paths.
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", `\`, "_", ":", "_", "*", "_",
		"?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
	)
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		name = "document"
	}
	return name
}
