package indexing

import (
	"context"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/internal/metrics"
	"github.com/standardbeagle/mapperlink/internal/parser"
	"github.com/standardbeagle/mapperlink/internal/types"
)

// SuggestionThreshold is the minimum Jaro-Winkler similarity for a
// suggested near-miss
const SuggestionThreshold = 0.7

// UsageResolution pairs a mapper call site with the statement it executes.
// Statement is nil when the namespace or id is not indexed.
type UsageResolution struct {
	Call      types.MapperCallRecord `json:"call" yaml:"call"`
	Statement *types.Location        `json:"statement,omitempty" yaml:"statement,omitempty"`
}

// FindUsages extracts every mapper call in the Java file uri and resolves
// each one to its XML statement.
func (idx *MapperIndex) FindUsages(ctx context.Context, uri string) ([]UsageResolution, error) {
	if !idx.IsReady() {
		return nil, mlerrors.ErrNotReady
	}
	text, err := idx.reader.ReadText(ctx, uri)
	if err != nil {
		return nil, err
	}
	return idx.ResolveUsages(text), nil
}

// ResolveUsages is FindUsages over text already in memory
func (idx *MapperIndex) ResolveUsages(text string) []UsageResolution {
	_, calls := parser.FindMapperCalls(text, idx.GetKnownMapperFQNs())
	out := make([]UsageResolution, 0, len(calls))
	for _, call := range calls {
		res := UsageResolution{Call: call}
		if loc, ok := idx.FindStatement(call.MapperFQN, call.MethodName); ok {
			res.Statement = &loc
		}
		out = append(out, res)
	}
	return out
}

// ResolveJavaCursor maps a cursor in Java text to an XML statement. The
// cursor may sit on a method name in a mapper interface or on a
// binding.method call through a known mapper.
func (idx *MapperIndex) ResolveJavaCursor(text string, line, column int) (types.Location, bool) {
	if name, ok := parser.GetMethodNameAtPosition(text, line, column); ok {
		pkg, okPkg := parser.ExtractPackageName(text)
		iface, okIface := parser.ExtractInterfaceName(text)
		if okPkg && okIface {
			if loc, found := idx.FindStatement(pkg+"."+iface, name); found {
				return loc, true
			}
		}
	}

	_, calls := parser.FindMapperCalls(text, idx.GetKnownMapperFQNs())
	for _, call := range calls {
		if call.Position.Line != line {
			continue
		}
		// call.Position is the binding; field and method names are ASCII
		end := call.Position.Column + len(call.FieldName) + 1 + len(call.MethodName)
		if column >= call.Position.Column && column <= end {
			return idx.FindStatement(call.MapperFQN, call.MethodName)
		}
	}
	return types.Location{}, false
}

// ResolveXMLCursor maps a cursor on a statement id in mapper XML text to
// the Java method of the same name
func (idx *MapperIndex) ResolveXMLCursor(text string, line, column int) (types.Location, bool) {
	id, ok := parser.GetIDAtPosition(text, line, column)
	if !ok {
		return types.Location{}, false
	}
	namespace, ok := parser.ExtractNamespace(text)
	if !ok {
		return types.Location{}, false
	}
	return idx.FindMethod(namespace, id)
}

// SuggestStatementIDs ranks the statement ids of namespace by similarity to
// id, best first. Used to explain a lookup miss.
func (idx *MapperIndex) SuggestStatementIDs(namespace, id string, limit int) []string {
	idx.mu.RLock()
	var candidates []string
	if doc := idx.xmlByNamespace[namespace]; doc != nil {
		candidates = make([]string, 0, len(doc.StatementByID))
		for name := range doc.StatementByID {
			candidates = append(candidates, name)
		}
	}
	idx.mu.RUnlock()
	return rankSimilar(id, candidates, limit)
}

// SuggestMethodNames ranks the method names of fqn by similarity to name
func (idx *MapperIndex) SuggestMethodNames(fqn, name string, limit int) []string {
	idx.mu.RLock()
	var candidates []string
	if doc := idx.javaByFQN[fqn]; doc != nil {
		candidates = make([]string, 0, len(doc.MethodByName))
		for n := range doc.MethodByName {
			candidates = append(candidates, n)
		}
	}
	idx.mu.RUnlock()
	return rankSimilar(name, candidates, limit)
}

// SuggestNamespaces ranks indexed XML namespaces and Java FQNs by
// similarity to name
func (idx *MapperIndex) SuggestNamespaces(name string, limit int) []string {
	idx.mu.RLock()
	seen := make(map[string]struct{}, len(idx.xmlByNamespace)+len(idx.javaByFQN))
	for ns := range idx.xmlByNamespace {
		seen[ns] = struct{}{}
	}
	for fqn := range idx.javaByFQN {
		seen[fqn] = struct{}{}
	}
	idx.mu.RUnlock()

	candidates := make([]string, 0, len(seen))
	for ns := range seen {
		candidates = append(candidates, ns)
	}
	return rankSimilar(name, candidates, limit)
}

// Coverage reports how XML statements and Java methods pair up
func (idx *MapperIndex) Coverage() *metrics.MapperStats {
	xmlDocs, javaDocs := idx.documents()
	stats := metrics.NewMapperStats()
	stats.CalculateFromDocuments(xmlDocs, javaDocs)
	return stats
}

type scoredName struct {
	name  string
	score float64
}

func rankSimilar(target string, candidates []string, limit int) []string {
	if target == "" || limit <= 0 {
		return nil
	}
	lowered := strings.ToLower(target)

	var scored []scoredName
	for _, c := range candidates {
		if c == target {
			continue
		}
		score := similarity(lowered, strings.ToLower(c))
		if score >= SuggestionThreshold {
			scored = append(scored, scoredName{name: c, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].name < scored[j].name
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.name
	}
	return out
}

// similarity returns the Jaro-Winkler similarity in [0, 1]
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}
