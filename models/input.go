package models

import (
	"path/filepath"
	"strings"
)

// InputKind tags the source variants the collector knows how to expand.
type InputKind int

const (
	InputRemoteURL InputKind = iota
	InputFsPath
	InputFsGlob
	InputStdin
	InputText
)

// FileType drives extractor dispatch.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeHTML
	FileTypeMarkdown
	FileTypePlaintext
	FileTypeEmail
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeHTML:
		return "html"
	case FileTypeMarkdown:
		return "markdown"
	case FileTypePlaintext:
		return "plaintext"
	case FileTypeEmail:
		return "email"
	}
	return "unknown"
}

// Input describes one source of links to check. Constructed from
// external configuration, consumed exactly once by the collector.
type Input struct {
	Kind           InputKind
	Value          string // URL, path, glob pattern, or literal text
	GlobIgnoreCase bool
	FileTypeHint   FileType
	SourceLabel    string // provenance override; defaults per kind
}

// NewInput classifies a raw CLI argument into an Input. "-" selects
// stdin, http(s) URLs stay remote, glob metacharacters make a glob,
// and everything else is a filesystem path.
func NewInput(raw string) Input {
	switch {
	case raw == "-":
		return Input{Kind: InputStdin}
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		return Input{Kind: InputRemoteURL, Value: raw}
	case strings.ContainsAny(raw, "*?["):
		return Input{Kind: InputFsGlob, Value: raw}
	default:
		return Input{Kind: InputFsPath, Value: raw}
	}
}

// NewTextInput wraps literal content, e.g. piped strings from other
// tools.
func NewTextInput(text string) Input {
	return Input{Kind: InputText, Value: text}
}

// Source returns the provenance label attached to every request that
// originates from this input.
func (in Input) Source() string {
	if in.SourceLabel != "" {
		return in.SourceLabel
	}
	switch in.Kind {
	case InputStdin:
		return "stdin"
	case InputText:
		return "string"
	default:
		return in.Value
	}
}

// FileTypeFromPath maps a file extension to a FileType.
func FileTypeFromPath(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return FileTypeHTML
	case ".md", ".markdown", ".mkdown", ".mdown", ".mdx", ".mkdn", ".mkd":
		return FileTypeMarkdown
	case ".txt", ".text":
		return FileTypePlaintext
	case ".eml", ".msg":
		return FileTypeEmail
	}
	return FileTypeUnknown
}

// InputContent is one expanded input: its provenance label, detected
// type, and raw bytes. Short-lived; handed straight to the extractors.
type InputContent struct {
	Source   string
	FileType FileType
	Content  []byte
}

// SniffFileType guesses the type of unlabelled content. HTML
// signatures win; anything else stays unknown so the verbatim policy
// can decide.
func SniffFileType(content []byte) FileType {
	head := strings.ToLower(string(content[:min(len(content), 512)]))
	head = strings.TrimLeft(head, " \t\r\n")
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return FileTypeHTML
	}
	return FileTypeUnknown
}
