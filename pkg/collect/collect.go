// Package collect expands inputs into content, runs the extractors,
// and assembles the checkable request stream. Expansion is lazy:
// items flow through bounded channels so a slow checker applies
// backpressure all the way to the filesystem walk.
package collect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/linkcheck/internal/common"
	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/base"
	"github.com/dtnitsch/linkcheck/pkg/extract"
)

// remoteReadLimit caps remote input bodies.
const remoteReadLimit = 32 << 20

// ContentItem is one expanded input, or the error that prevented its
// expansion. Base is the reference anchor for links found inside.
type ContentItem struct {
	Content models.InputContent
	Base    *base.Base
	Err     error
}

// Item is one assembled request, or a per-candidate failure that
// still owes the aggregator a response.
type Item struct {
	Request models.Request
	RawText string
	Source  string
	Err     error
}

// Collector turns configured inputs into request items.
type Collector struct {
	Base            *base.Base
	IncludeVerbatim bool
	UseIgnoreFiles  bool
	SkipHidden      bool
	HTTP            *http.Client
	Logger          *slog.Logger
	BufferSize      int

	Stdin io.Reader // defaults to os.Stdin
}

func (c *Collector) buffer() int {
	if c.BufferSize > 0 {
		return c.BufferSize
	}
	return 64
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Contents expands inputs in order into a bounded stream.
func (c *Collector) Contents(ctx context.Context, inputs []models.Input) <-chan ContentItem {
	out := make(chan ContentItem, c.buffer())
	go func() {
		defer close(out)
		for _, input := range inputs {
			c.expand(ctx, input, out)
		}
	}()
	return out
}

func (c *Collector) expand(ctx context.Context, input models.Input, out chan<- ContentItem) {
	switch input.Kind {
	case models.InputRemoteURL:
		c.emitRemote(ctx, input, out)
	case models.InputFsPath:
		c.emitPath(ctx, input, input.Value, out)
	case models.InputFsGlob:
		for _, path := range c.expandGlob(input) {
			c.emitFile(ctx, input, path, out)
		}
	case models.InputStdin:
		c.emitReader(ctx, input, c.stdin(), out)
	case models.InputText:
		send(ctx, out, ContentItem{
			Content: models.InputContent{
				Source:   input.Source(),
				FileType: contentType(input, "", []byte(input.Value)),
				Content:  []byte(input.Value),
			},
			Base: c.Base,
		})
	}
}

func (c *Collector) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

// emitRemote fetches a remote input once with the checking client's
// transport so cookies and redirect policy match.
func (c *Collector) emitRemote(ctx context.Context, input models.Input, out chan<- ContentItem) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.Value, nil)
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("invalid input URL %q: %w", input.Value, err)})
		return
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to fetch input %q: %w", input.Value, err)})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to fetch input %q: status %d", input.Value, resp.StatusCode)})
		return
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, remoteReadLimit))
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to read input %q: %w", input.Value, err)})
		return
	}

	inputBase := c.Base
	if inputBase == nil {
		if b, err := base.New(input.Value); err == nil {
			inputBase = b
		}
	}
	fileType := input.FileTypeHint
	if fileType == models.FileTypeUnknown {
		fileType = bodyTypeFromHeader(resp.Header.Get("Content-Type"))
	}
	if fileType == models.FileTypeUnknown {
		fileType = models.SniffFileType(body)
	}
	send(ctx, out, ContentItem{
		Content: models.InputContent{Source: input.Source(), FileType: fileType, Content: body},
		Base:    inputBase,
	})
}

func bodyTypeFromHeader(contentType string) models.FileType {
	switch {
	case contains(contentType, "text/html"), contains(contentType, "application/xhtml"):
		return models.FileTypeHTML
	case contains(contentType, "text/markdown"):
		return models.FileTypeMarkdown
	case contains(contentType, "text/plain"):
		return models.FileTypePlaintext
	case contains(contentType, "message/rfc822"):
		return models.FileTypeEmail
	}
	return models.FileTypeUnknown
}

// emitPath handles a filesystem input: files are read directly,
// directories are walked for extractable documents.
func (c *Collector) emitPath(ctx context.Context, input models.Input, path string, out chan<- ContentItem) {
	info, err := os.Stat(path)
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to read input %q: %w", path, err)})
		return
	}
	if !info.IsDir() {
		c.emitFile(ctx, input, path, out)
		return
	}
	for _, file := range c.walkDir(path) {
		c.emitFile(ctx, input, file, out)
	}
}

func (c *Collector) emitFile(ctx context.Context, input models.Input, path string, out chan<- ContentItem) {
	data, err := os.ReadFile(path)
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to read input %q: %w", path, err)})
		return
	}

	inputBase := c.Base
	if inputBase == nil {
		if b, err := base.FromDir(filepath.Dir(path)); err == nil {
			inputBase = b
		}
	}
	source := input.Source()
	if input.Kind == models.InputFsGlob || source == "" {
		source = path
	}
	if input.Kind == models.InputFsPath && input.Value != path {
		source = path
	}
	send(ctx, out, ContentItem{
		Content: models.InputContent{
			Source:   source,
			FileType: contentType(input, path, data),
			Content:  data,
		},
		Base: inputBase,
	})
}

func (c *Collector) emitReader(ctx context.Context, input models.Input, r io.Reader, out chan<- ContentItem) {
	data, err := io.ReadAll(r)
	if err != nil {
		send(ctx, out, ContentItem{Err: fmt.Errorf("failed to read stdin: %w", err)})
		return
	}
	fileType := contentType(input, "", data)
	if fileType == models.FileTypeUnknown && input.Kind == models.InputStdin {
		// Stdin has no extension to go by; unsniffable text is plaintext.
		fileType = models.FileTypePlaintext
	}
	send(ctx, out, ContentItem{
		Content: models.InputContent{
			Source:   input.Source(),
			FileType: fileType,
			Content:  data,
		},
		Base: c.Base,
	})
}

// contentType picks the file type: explicit hint, then extension,
// then a content sniff.
func contentType(input models.Input, path string, data []byte) models.FileType {
	if input.FileTypeHint != models.FileTypeUnknown {
		return input.FileTypeHint
	}
	if path != "" {
		if ft := models.FileTypeFromPath(path); ft != models.FileTypeUnknown {
			return ft
		}
	}
	return models.SniffFileType(data)
}

// Requests runs the full assembly: contents, extraction, sanitation,
// base resolution, and per-source deduplication.
func (c *Collector) Requests(ctx context.Context, inputs []models.Input) <-chan Item {
	out := make(chan Item, c.buffer())
	go func() {
		defer close(out)
		seen := make(map[string]bool)
		for item := range c.Contents(ctx, inputs) {
			if item.Err != nil {
				send(ctx, out, Item{Err: item.Err})
				continue
			}
			for _, raw := range extract.Links(item.Content, c.IncludeVerbatim) {
				cleaned := common.SanitizeURL(raw.Text)
				if cleaned == "" {
					continue
				}
				u, err := base.Resolve(item.Base, cleaned)
				if err != nil {
					send(ctx, out, Item{
						RawText: raw.Text,
						Source:  item.Content.Source,
						Err:     err,
					})
					continue
				}
				key := item.Content.Source + "\x00" + u.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				send(ctx, out, Item{
					Request: models.NewRequest(u, item.Content.Source, raw),
					Source:  item.Content.Source,
				})
			}
		}
	}()
	return out
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// send delivers an item unless the pipeline is cancelled.
func send[T any](ctx context.Context, out chan<- T, item T) {
	select {
	case out <- item:
	case <-ctx.Done():
	}
}
