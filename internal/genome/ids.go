package genome

import (
	"fmt"
	"strings"
)

// FileID returns the stable id for a file node: the repo-relative path.
func FileID(relPath string) NodeId {
	return NodeId(filepath(relPath))
}

func filepath(p string) string {
	return strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "./")
}

// SymbolID returns the stable id for a function/class/test node, namespaced
// by file so identically-named symbols in different files never collide.
func SymbolID(relPath, qualifiedName string) NodeId {
	return NodeId(fmt.Sprintf("%s#%s", filepath(relPath), qualifiedName))
}

// ExternalID returns the stable id for a virtual external-dependency node
// created when an import cannot be resolved to an in-repo file.
func ExternalID(resolverKey string) NodeId {
	return NodeId(fmt.Sprintf("ext:%s", resolverKey))
}

// ConceptID returns the stable id for an IntentAtlas-derived concept node.
func ConceptID(slug string) NodeId {
	return NodeId(fmt.Sprintf("concept:%s", slug))
}

// IsExternal reports whether an id names a virtual external node.
func IsExternal(id NodeId) bool {
	return strings.HasPrefix(string(id), "ext:")
}

// IsConcept reports whether an id names a concept node.
func IsConcept(id NodeId) bool {
	return strings.HasPrefix(string(id), "concept:")
}

// OwningFile returns the file portion of a symbol id, or "" for
// file/concept/external ids that carry no '#'-separated file prefix.
func OwningFile(id NodeId) string {
	s := string(id)
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		return s[:idx]
	}
	return ""
}
