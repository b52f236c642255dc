// Package classify implements the File Classifier: a pure, total
// mapping from a path (and optionally a content peek) to a language,
// kind, and analyzer capability tag.
//
// Grounded on the teacher's internal/git/language.go (extension->
// language table) and internal/ingestion/walker.go (isSupportedFile /
// isGeneratedFile / shouldSkipDir exclusion heuristics), generalized
// from "JS/TS/Python only" to the full closed Kind set plus a
// shebang/content-sniff fallback.
package classify

import (
	"path/filepath"
	"strings"
)

// Kind is the closed set of file kinds.
type Kind string

const (
	KindCode   Kind = "code"
	KindDoc    Kind = "doc"
	KindConfig Kind = "config"
	KindWeb    Kind = "web"
	KindData   Kind = "data"
	KindOther  Kind = "other"
)

// Result is the Classifier's total, pure output for a single path.
type Result struct {
	Language            string
	Kind                Kind
	AnalyzerCapability   string // empty when no analyzer can handle this (always for KindOther; also for code languages without a built-in analyzer)
	Generated            bool
}

var extensionTable = map[string]Result{
	".py":  {Language: "python", Kind: KindCode, AnalyzerCapability: "python"},
	".pyi": {Language: "python", Kind: KindCode, AnalyzerCapability: "python"},
	".pyw": {Language: "python", Kind: KindCode, AnalyzerCapability: "python"},

	".js":  {Language: "javascript", Kind: KindCode, AnalyzerCapability: "javascript"},
	".jsx": {Language: "javascript", Kind: KindCode, AnalyzerCapability: "javascript"},
	".mjs": {Language: "javascript", Kind: KindCode, AnalyzerCapability: "javascript"},
	".cjs": {Language: "javascript", Kind: KindCode, AnalyzerCapability: "javascript"},

	".ts":  {Language: "typescript", Kind: KindCode, AnalyzerCapability: "typescript"},
	".tsx": {Language: "typescript", Kind: KindCode, AnalyzerCapability: "typescript"},
	".mts": {Language: "typescript", Kind: KindCode, AnalyzerCapability: "typescript"},
	".cts": {Language: "typescript", Kind: KindCode, AnalyzerCapability: "typescript"},

	".go":     {Language: "go", Kind: KindCode},
	".java":   {Language: "java", Kind: KindCode},
	".c":      {Language: "c", Kind: KindCode},
	".cpp":    {Language: "cpp", Kind: KindCode},
	".cc":     {Language: "cpp", Kind: KindCode},
	".h":      {Language: "c", Kind: KindCode},
	".hpp":    {Language: "cpp", Kind: KindCode},
	".rb":     {Language: "ruby", Kind: KindCode},
	".rs":     {Language: "rust", Kind: KindCode},
	".php":    {Language: "php", Kind: KindCode},

	".md":       {Kind: KindDoc},
	".mdx":      {Kind: KindDoc},
	".rst":      {Kind: KindDoc},
	".txt":      {Kind: KindDoc},
	".adoc":     {Kind: KindDoc},

	".yaml":     {Kind: KindConfig},
	".yml":      {Kind: KindConfig},
	".toml":     {Kind: KindConfig},
	".ini":      {Kind: KindConfig},
	".cfg":      {Kind: KindConfig},
	".env":      {Kind: KindConfig},

	".html":  {Kind: KindWeb},
	".htm":   {Kind: KindWeb},
	".css":   {Kind: KindWeb},
	".scss":  {Kind: KindWeb},
	".vue":   {Kind: KindWeb},
	".svelte": {Kind: KindWeb},

	".json": {Kind: KindData},
	".csv":  {Kind: KindData},
	".xml":  {Kind: KindData},
	".sql":  {Kind: KindData},
}

var shebangTable = map[string]Result{
	"python":  extensionTable[".py"],
	"python3": extensionTable[".py"],
	"node":    extensionTable[".js"],
	"bash":    {Kind: KindCode, Language: "shell"},
	"sh":      {Kind: KindCode, Language: "shell"},
}

var generatedSuffixes = []string{
	".min.js", ".bundle.js", ".generated.ts", ".generated.js",
	".pb.js", ".pb.ts", "_pb.js", "_pb.ts", ".d.ts",
}

var generatedDirMarkers = []string{
	"/dist/", "/build/", "/out/", "/.next/", "/.nuxt/",
}

// ExcludedDirs are directory names (or prefixes) the Structural
// Extractor's walk must never descend into.
var ExcludedDirs = []string{
	".git", "node_modules", "vendor", "venv", "__pycache__",
	".next", ".nuxt", "dist", "build", "out", "target", ".cache",
	".parcel-cache", "coverage", ".nyc_output", ".pytest_cache",
	".tox", ".venv", "env", "__mocks__", ".idea", ".vscode",
}

// ShouldSkipDir reports whether a directory name should be excluded
// from the repository walk.
func ShouldSkipDir(name string) bool {
	for _, excl := range ExcludedDirs {
		if name == excl || strings.HasPrefix(name, excl) {
			return true
		}
	}
	return false
}

// Classify returns the total classification for path. peek is an
// optional prefix of the file's content (used for the shebang and
// content-sniff resolution steps); it may be nil when unavailable,
// in which case classification falls back to extension only.
func Classify(path string, peek []byte) Result {
	ext := strings.ToLower(filepath.Ext(path))
	if r, ok := extensionTable[ext]; ok {
		r.Generated = isGenerated(path)
		return r
	}

	if r, ok := classifyByShebang(peek); ok {
		r.Generated = isGenerated(path)
		return r
	}

	if r, ok := classifyByContentSniff(peek); ok {
		r.Generated = isGenerated(path)
		return r
	}

	return Result{Kind: KindOther}
}

func classifyByShebang(peek []byte) (Result, bool) {
	if len(peek) == 0 {
		return Result{}, false
	}
	firstLine := peek
	if idx := indexByte(peek, '\n'); idx >= 0 {
		firstLine = peek[:idx]
	}
	line := strings.TrimSpace(string(firstLine))
	if !strings.HasPrefix(line, "#!") {
		return Result{}, false
	}
	interpreter := line
	if idx := strings.LastIndexByte(line, '/'); idx >= 0 {
		interpreter = line[idx+1:]
	}
	interpreter = strings.TrimSpace(interpreter)
	// Handle "#!/usr/bin/env python3" style shebangs.
	fields := strings.Fields(interpreter)
	if len(fields) > 0 {
		interpreter = fields[len(fields)-1]
	}
	if r, ok := shebangTable[interpreter]; ok {
		return r, true
	}
	return Result{}, false
}

func classifyByContentSniff(peek []byte) (Result, bool) {
	if len(peek) == 0 {
		return Result{}, false
	}
	trimmed := strings.TrimSpace(string(peek))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return Result{Kind: KindData}, true
	}
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<html") {
		return Result{Kind: KindWeb}, true
	}
	return Result{}, false
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func isGenerated(path string) bool {
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	for _, marker := range generatedDirMarkers {
		// Prefix a slash so a top-level directory (e.g. "build/x.js") matches too.
		if strings.Contains("/"+path, marker) {
			return true
		}
	}
	return false
}
