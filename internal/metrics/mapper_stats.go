package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/mapperlink/internal/types"
)

// MapperStats summarizes an indexed workspace: document counts, statement
// distribution and how well XML statements and Java methods line up.
type MapperStats struct {
	// Document-level metrics
	XMLMappers  int64
	JavaMappers int64

	// Statement-level metrics
	TotalStatements      int64
	StatementsByKind     map[types.StatementKind]int64
	DuplicateStatementID int64

	// Method-level metrics
	TotalMethods    int64
	OverloadedNames int64

	// Cross-reference coverage, one entry per namespace
	Namespaces []NamespaceCoverage
}

// NamespaceCoverage reports the pairing between one XML namespace and the
// Java mapper of the same fully qualified name.
type NamespaceCoverage struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	HasXML    bool   `json:"has_xml" yaml:"has_xml"`
	HasJava   bool   `json:"has_java" yaml:"has_java"`
	// Methods without a select/insert/update/delete of the same id
	UnmappedMethods []string `json:"unmapped_methods,omitempty" yaml:"unmapped_methods,omitempty"`
	// SQL statements without a method of the same name
	OrphanStatements []string `json:"orphan_statements,omitempty" yaml:"orphan_statements,omitempty"`
}

// Complete reports whether both sides exist and every id is matched.
func (c NamespaceCoverage) Complete() bool {
	return c.HasXML && c.HasJava && len(c.UnmappedMethods) == 0 && len(c.OrphanStatements) == 0
}

// NewMapperStats creates a new MapperStats calculator
func NewMapperStats() *MapperStats {
	return &MapperStats{
		StatementsByKind: make(map[types.StatementKind]int64),
	}
}

// CalculateFromDocuments computes all metrics from indexed documents.
// Documents are read only.
func (ms *MapperStats) CalculateFromDocuments(xmlDocs []*types.XMLMapperDocument, javaDocs []*types.JavaMapperDocument) {
	byNamespace := make(map[string]*NamespaceCoverage)
	coverage := func(ns string) *NamespaceCoverage {
		c, ok := byNamespace[ns]
		if !ok {
			c = &NamespaceCoverage{Namespace: ns}
			byNamespace[ns] = c
		}
		return c
	}

	xmlByNS := make(map[string]*types.XMLMapperDocument, len(xmlDocs))
	for _, doc := range xmlDocs {
		ms.XMLMappers++
		ms.TotalStatements += int64(len(doc.Statements))
		ms.DuplicateStatementID += int64(len(doc.Statements) - len(doc.StatementByID))
		for _, st := range doc.Statements {
			ms.StatementsByKind[st.Kind]++
		}
		xmlByNS[doc.Namespace] = doc
		coverage(doc.Namespace).HasXML = true
	}

	javaByFQN := make(map[string]*types.JavaMapperDocument, len(javaDocs))
	for _, doc := range javaDocs {
		ms.JavaMappers++
		ms.TotalMethods += int64(len(doc.Methods))
		ms.OverloadedNames += int64(len(doc.Methods) - len(doc.MethodByName))
		javaByFQN[doc.FullyQualifiedName] = doc
		coverage(doc.FullyQualifiedName).HasJava = true
	}

	for ns, c := range byNamespace {
		xmlDoc, javaDoc := xmlByNS[ns], javaByFQN[ns]
		if xmlDoc == nil || javaDoc == nil {
			continue
		}
		for name := range javaDoc.MethodByName {
			st, ok := xmlDoc.StatementByID[name]
			if !ok || !st.Kind.IsSQLStatement() {
				c.UnmappedMethods = append(c.UnmappedMethods, name)
			}
		}
		for id, st := range xmlDoc.StatementByID {
			if !st.Kind.IsSQLStatement() {
				continue
			}
			if _, ok := javaDoc.MethodByName[id]; !ok {
				c.OrphanStatements = append(c.OrphanStatements, id)
			}
		}
		sort.Strings(c.UnmappedMethods)
		sort.Strings(c.OrphanStatements)
	}

	ms.Namespaces = make([]NamespaceCoverage, 0, len(byNamespace))
	for _, c := range byNamespace {
		ms.Namespaces = append(ms.Namespaces, *c)
	}
	sort.Slice(ms.Namespaces, func(i, j int) bool {
		return ms.Namespaces[i].Namespace < ms.Namespaces[j].Namespace
	})
}

// FormatAsJSON returns stats formatted as JSON-serializable map
func (ms *MapperStats) FormatAsJSON() map[string]interface{} {
	kinds := make(map[string]int64, len(ms.StatementsByKind))
	for k, n := range ms.StatementsByKind {
		kinds[string(k)] = n
	}

	complete := 0
	for _, c := range ms.Namespaces {
		if c.Complete() {
			complete++
		}
	}

	return map[string]interface{}{
		"summary": map[string]interface{}{
			"xml_mappers":  ms.XMLMappers,
			"java_mappers": ms.JavaMappers,
			"statements":   ms.TotalStatements,
			"methods":      ms.TotalMethods,
		},
		"statements": map[string]interface{}{
			"by_kind":       kinds,
			"duplicate_ids": ms.DuplicateStatementID,
		},
		"methods": map[string]interface{}{
			"total":      ms.TotalMethods,
			"overloaded": ms.OverloadedNames,
		},
		"coverage": map[string]interface{}{
			"namespaces": len(ms.Namespaces),
			"complete":   complete,
			"details":    ms.Namespaces,
		},
	}
}

// FormatAsText returns stats formatted as human-readable text
func (ms *MapperStats) FormatAsText() string {
	var sb strings.Builder

	sb.WriteString("MAPPER INDEX REPORT\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("  XML Mappers:        %d\n", ms.XMLMappers))
	sb.WriteString(fmt.Sprintf("  Java Mappers:       %d\n", ms.JavaMappers))
	sb.WriteString(fmt.Sprintf("  Statements:         %d\n", ms.TotalStatements))
	sb.WriteString(fmt.Sprintf("  Methods:            %d\n", ms.TotalMethods))

	if len(ms.StatementsByKind) > 0 {
		sb.WriteString("\nSTATEMENTS BY KIND\n")
		sb.WriteString("─────────────────────────────────────────────────────────────────\n")
		kinds := make([]string, 0, len(ms.StatementsByKind))
		for k := range ms.StatementsByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			sb.WriteString(fmt.Sprintf("  %-12s %5d\n", k+":", ms.StatementsByKind[types.StatementKind(k)]))
		}
		if ms.DuplicateStatementID > 0 {
			sb.WriteString(fmt.Sprintf("  duplicate ids: %d (last declaration wins)\n", ms.DuplicateStatementID))
		}
	}

	var gaps []NamespaceCoverage
	for _, c := range ms.Namespaces {
		if !c.Complete() {
			gaps = append(gaps, c)
		}
	}
	sb.WriteString("\nCOVERAGE\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("  Namespaces:         %d (%d complete)\n", len(ms.Namespaces), len(ms.Namespaces)-len(gaps)))
	for _, c := range gaps {
		switch {
		case !c.HasJava:
			sb.WriteString(fmt.Sprintf("  %s: no Java mapper\n", c.Namespace))
		case !c.HasXML:
			sb.WriteString(fmt.Sprintf("  %s: no XML mapper\n", c.Namespace))
		default:
			if len(c.UnmappedMethods) > 0 {
				sb.WriteString(fmt.Sprintf("  %s: methods without statement: %s\n", c.Namespace, strings.Join(c.UnmappedMethods, ", ")))
			}
			if len(c.OrphanStatements) > 0 {
				sb.WriteString(fmt.Sprintf("  %s: statements without method: %s\n", c.Namespace, strings.Join(c.OrphanStatements, ", ")))
			}
		}
	}

	return sb.String()
}
