package analyzer

import (
	"fmt"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/treesitter"
)

// treeSitterLang maps an analyzer.Language() name to the treesitter
// package's own language identifier (which additionally distinguishes
// jsx/tsx at the parser-selection level).
var treeSitterLang = map[string]string{
	"python":     "python",
	"javascript": "javascript",
	"typescript": "typescript",
}

// TreeSitterAnalyzer wraps the teacher's tree-sitter extraction
// (internal/treesitter) to satisfy the Analyzer interface, converting
// CodeEntity output into the closed NodeDecl/EdgeDecl/ImportDecl shape
// ExtractionResult requires.
type TreeSitterAnalyzer struct {
	language string
}

// NewTreeSitterAnalyzer returns an Analyzer for one of "python",
// "javascript", "typescript".
func NewTreeSitterAnalyzer(language string) *TreeSitterAnalyzer {
	return &TreeSitterAnalyzer{language: language}
}

func (t *TreeSitterAnalyzer) Language() string { return t.language }

func (t *TreeSitterAnalyzer) Extract(path string, content []byte) ExtractionResult {
	lang, ok := treeSitterLang[t.language]
	if !ok {
		return ExtractionResult{Diagnostics: []Diagnostic{{
			Severity: SeverityError, Message: "no tree-sitter grammar for language " + t.language, File: path,
		}}}
	}

	parsed, err := treesitter.ParseContent(path, lang, content)
	if err != nil || (parsed != nil && parsed.Error != nil) {
		msg := "parse failed"
		if err != nil {
			msg = err.Error()
		} else {
			msg = parsed.Error.Error()
		}
		return ExtractionResult{Diagnostics: []Diagnostic{{
			Severity: SeverityError, Message: msg, File: path,
		}}}
	}

	return convertEntities(path, t.language, parsed.Entities)
}

func convertEntities(path, language string, entities []treesitter.CodeEntity) ExtractionResult {
	var result ExtractionResult

	fileID := genome.FileID(path)
	result.Nodes = append(result.Nodes, NodeDecl{
		ID: fileID, Type: genome.NodeFile, File: path, Language: language,
		Visibility: genome.VisibilityPublic,
	})

	for _, ent := range entities {
		switch ent.Type {
		case "file":
			continue // the file node is emitted once above

		case "function":
			symID := genome.SymbolID(path, ent.Name)
			result.Nodes = append(result.Nodes, NodeDecl{
				ID: symID, Type: genome.NodeFunction, File: path, Language: language,
				Visibility: visibilityOf(ent.Name),
				Summary:    ent.Signature,
				StartLine:  ent.StartLine, EndLine: ent.EndLine,
				IsEntry: isEntryPointName(ent.Name, language),
			})
			result.Edges = append(result.Edges, EdgeDecl{From: fileID, To: symID, Type: genome.EdgeDefines})

		case "class":
			symID := genome.SymbolID(path, ent.Name)
			nodeType := genome.NodeClass
			if strings.HasPrefix(strings.ToLower(ent.Name), "test") || strings.Contains(strings.ToLower(path), "test") {
				nodeType = genome.NodeTest
			}
			result.Nodes = append(result.Nodes, NodeDecl{
				ID: symID, Type: nodeType, File: path, Language: language,
				Visibility: visibilityOf(ent.Name),
				Summary:    ent.Signature,
				StartLine:  ent.StartLine, EndLine: ent.EndLine,
			})
			result.Edges = append(result.Edges, EdgeDecl{From: fileID, To: symID, Type: genome.EdgeDefines})

		case "import":
			result.Imports = append(result.Imports, ImportDecl{From: fileID, ImportPath: ent.ImportPath})

		default:
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("unrecognized entity kind %q", ent.Type),
				File:     path,
			})
		}
	}

	return result
}

func visibilityOf(name string) genome.Visibility {
	if name == "" {
		return genome.VisibilityInternal
	}
	if strings.HasPrefix(name, "_") || strings.Contains(name, "._") {
		return genome.VisibilityPrivate
	}
	r := name[0]
	if r >= 'A' && r <= 'Z' {
		return genome.VisibilityPublic
	}
	return genome.VisibilityInternal
}

func isEntryPointName(name, language string) bool {
	switch language {
	case "python":
		return name == "main"
	case "javascript", "typescript":
		return name == "main" || name == "default" || strings.HasSuffix(name, "Handler")
	default:
		return false
	}
}
