// Package diagram renders Mermaid diagrams from a code index: class
// hierarchies, call graphs, and file import graphs.
package diagram

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

var nonIdentChar = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeID turns an arbitrary name into a Mermaid-safe node id. The
// hash suffix keeps two names that collide after character
// replacement (e.g. "foo.bar" and "foo_bar") from landing on the same
// node.
func sanitizeID(name string) string {
	base := nonIdentChar.ReplaceAllString(name, "_")
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%s_%04x", base, h.Sum32()&0xffff)
}

func shortName(qualifiedName string) string {
	idx := strings.LastIndex(qualifiedName, ".")
	if idx < 0 {
		return qualifiedName
	}
	return qualifiedName[idx+1:]
}

func fileLabel(relPath string) string {
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return relPath
	}
	return relPath[idx+1:]
}

// Generator renders diagrams from a Store.
type Generator struct {
	store *storage.Store
}

// New builds a Generator over store.
func New(store *storage.Store) *Generator {
	return &Generator{store: store}
}

// ClassDiagram renders a Mermaid classDiagram for className and its
// immediate ancestor/descendant chains, with each class's own methods
// listed inside its block. Returns "" if className resolves to
// nothing.
func (g *Generator) ClassDiagram(ctx context.Context, className string) (string, error) {
	matches, err := g.store.LookupSymbol(ctx, className)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	root := matches[0]

	hierarchy, err := g.store.GetClassHierarchy(ctx, root.ID)
	if err != nil {
		return "", err
	}

	allClasses := []*types.SymbolRecord{root}
	allClasses = append(allClasses, hierarchy.Ancestors...)
	allClasses = append(allClasses, hierarchy.Descendants...)

	classIDs := make(map[int64]string, len(allClasses))
	for _, c := range allClasses {
		classIDs[c.ID] = sanitizeID(c.QualifiedName)
	}

	lines := []string{"classDiagram"}
	for _, c := range allClasses {
		cid := classIDs[c.ID]
		short := shortName(c.QualifiedName)
		methods, err := g.store.GetMethodsForClass(ctx, c.ID)
		if err != nil {
			return "", err
		}
		if len(methods) == 0 {
			lines = append(lines, fmt.Sprintf("    class %s[\"%s\"]", cid, short))
			continue
		}
		lines = append(lines, fmt.Sprintf("    class %s[\"%s\"] {", cid, short))
		for _, m := range methods {
			lines = append(lines, "        +"+methodSignatureLine(m))
		}
		lines = append(lines, "    }")
	}

	for _, p := range hierarchy.Ancestors {
		lines = append(lines, fmt.Sprintf("    %s <|-- %s", classIDs[p.ID], classIDs[root.ID]))
	}
	for _, c := range hierarchy.Descendants {
		lines = append(lines, fmt.Sprintf("    %s <|-- %s", classIDs[root.ID], classIDs[c.ID]))
	}

	return strings.Join(lines, "\n"), nil
}

func methodSignatureLine(m *types.SymbolRecord) string {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		if p.Name == "self" || p.Name == "cls" {
			continue
		}
		if p.Type != "" {
			params = append(params, p.Name+": "+p.Type)
		} else {
			params = append(params, p.Name)
		}
	}
	ret := ""
	if m.ReturnType != "" {
		ret = " " + m.ReturnType
	}
	return fmt.Sprintf("%s(%s)%s", m.Name, strings.Join(params, ", "), ret)
}

// CallGraph renders a Mermaid flowchart of call relationships reachable
// from qualifiedName, in the given direction ("callees" or "callers"),
// up to depth hops. Returns "" if qualifiedName resolves to nothing or
// has no edges.
func (g *Generator) CallGraph(ctx context.Context, qualifiedName string, depth int, direction string) (string, error) {
	matches, err := g.store.LookupSymbol(ctx, qualifiedName)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	root := matches[0]

	edges, err := g.store.GetCallEdges(ctx, root.ID, direction, depth)
	if err != nil {
		return "", err
	}
	if len(edges) == 0 {
		return "", nil
	}

	nodes := make(map[string]bool)
	for _, e := range edges {
		nodes[e.CallerQualifiedName] = true
		nodes[e.CalleeQualifiedName] = true
	}
	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	lines := []string{"flowchart LR"}
	for _, n := range names {
		lines = append(lines, fmt.Sprintf("    %s[\"%s\"]", sanitizeID(n), shortName(n)))
	}
	for _, e := range edges {
		lines = append(lines, fmt.Sprintf("    %s --> %s", sanitizeID(e.CallerQualifiedName), sanitizeID(e.CalleeQualifiedName)))
	}

	rootID := sanitizeID(root.QualifiedName)
	if nodes[root.QualifiedName] {
		lines = append(lines, fmt.Sprintf("    style %s fill:#f96,stroke:#333,stroke-width:2px", rootID))
	}

	return strings.Join(lines, "\n"), nil
}

// ImportGraph renders a Mermaid flowchart of file-to-file import
// dependencies, grouped into subgraphs by top-level directory. If
// relPath is non-empty, only edges touching that file are included.
func (g *Generator) ImportGraph(ctx context.Context, relPath string) (string, error) {
	allEdges, err := g.store.GetAllImportEdges(ctx)
	if err != nil {
		return "", err
	}

	type edge struct{ from, to string }
	var edges []edge
	for _, e := range allEdges {
		if e.ResolvedPath == "" {
			continue
		}
		if relPath != "" && e.FromPath != relPath && e.ResolvedPath != relPath {
			continue
		}
		edges = append(edges, edge{from: e.FromPath, to: e.ResolvedPath})
	}
	if len(edges) == 0 {
		return "", nil
	}

	dirFiles := make(map[string]map[string]bool)
	allFiles := make(map[string]bool)
	for _, e := range edges {
		allFiles[e.from] = true
		allFiles[e.to] = true
	}
	for fp := range allFiles {
		group := "."
		if idx := strings.Index(fp, "/"); idx >= 0 {
			group = fp[:idx]
		}
		if dirFiles[group] == nil {
			dirFiles[group] = make(map[string]bool)
		}
		dirFiles[group][fp] = true
	}

	groups := make([]string, 0, len(dirFiles))
	for g := range dirFiles {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	lines := []string{"flowchart LR"}
	for _, group := range groups {
		files := make([]string, 0, len(dirFiles[group]))
		for fp := range dirFiles[group] {
			files = append(files, fp)
		}
		sort.Strings(files)

		if group == "." {
			for _, fp := range files {
				lines = append(lines, fmt.Sprintf("    %s[\"%s\"]", sanitizeID(fp), fileLabel(fp)))
			}
			continue
		}
		lines = append(lines, fmt.Sprintf("    subgraph %s[\"%s\"]", sanitizeID(group), group))
		for _, fp := range files {
			lines = append(lines, fmt.Sprintf("        %s[\"%s\"]", sanitizeID(fp), fileLabel(fp)))
		}
		lines = append(lines, "    end")
	}

	for _, e := range edges {
		lines = append(lines, fmt.Sprintf("    %s --> %s", sanitizeID(e.from), sanitizeID(e.to)))
	}

	return strings.Join(lines, "\n"), nil
}
