package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/mapperlink/internal/sanitizer"
	"github.com/standardbeagle/mapperlink/internal/types"
)

var (
	// import com.example.mapper.UserMapper;
	reJavaImport = regexp.MustCompile(`(?m)^\s*import\s+(static\s+)?([\w.]+(?:\.\*)?)\s*;`)

	// @Autowired private final UserMapper userMapper;
	reMapperField = regexp.MustCompile(
		`(?:@\w+(?:\([^)]*\))?\s*)*(?:private|protected|public)?\s*(?:static\s+)?(?:final\s+)?(\w+)\s+(\w+)\s*[;=]`)

	// void run(@Param("m") UserMapper userMapper, ...)
	reMapperParam = regexp.MustCompile(`(?:@\w+(?:\([^)]*\))?\s+)*(\w+)\s+(\w+)\s*[,)]`)

	// userMapper.findById(
	reMapperCall = regexp.MustCompile(`\b(\w+)\.(\w+)\s*\(`)
)

// BuildImportMap maps simple class names to fully-qualified names using
// single-type imports. Wildcard and static imports cannot bind a simple
// name and are skipped.
func BuildImportMap(text string) map[string]string {
	return buildImportMap(sanitizer.Java(text))
}

func buildImportMap(sanitized string) map[string]string {
	imports := make(map[string]string)
	for _, m := range reJavaImport.FindAllStringSubmatch(sanitized, -1) {
		if m[1] != "" {
			continue
		}
		fqn := m[2]
		if strings.HasSuffix(fqn, "*") {
			continue
		}
		dot := strings.LastIndexByte(fqn, '.')
		if dot < 0 {
			continue
		}
		imports[fqn[dot+1:]] = fqn
	}
	return imports
}

// ExtractMapperFields finds fields and method parameters whose type resolves
// to a known mapper. Types resolve through the import map first and then
// through the file's own package. The first binding of a variable name wins.
func ExtractMapperFields(text string, imports map[string]string, knownFQNs map[string]struct{}) []types.MapperFieldRecord {
	sanitized := sanitizer.Java(text)
	pkg, _ := extractPackageName(sanitized)
	return extractMapperFields(sanitized, pkg, imports, knownFQNs)
}

func extractMapperFields(sanitized, pkg string, imports map[string]string, knownFQNs map[string]struct{}) []types.MapperFieldRecord {
	if len(knownFQNs) == 0 {
		return nil
	}

	var fields []types.MapperFieldRecord
	seen := make(map[string]bool)

	tryAdd := func(typeName, varName string, line int) {
		if seen[varName] {
			return
		}
		fqn, ok := resolveMapperType(typeName, pkg, imports, knownFQNs)
		if !ok {
			return
		}
		seen[varName] = true
		fields = append(fields, types.MapperFieldRecord{
			FieldName:       varName,
			MapperTypeName:  typeName,
			MapperFQN:       fqn,
			DeclarationLine: line,
		})
	}

	for lineNo, line := range strings.Split(sanitized, "\n") {
		for _, m := range reMapperField.FindAllStringSubmatch(line, -1) {
			tryAdd(m[1], m[2], lineNo)
		}
		for _, m := range reMapperParam.FindAllStringSubmatch(line, -1) {
			tryAdd(m[1], m[2], lineNo)
		}
	}
	return fields
}

func resolveMapperType(typeName, pkg string, imports map[string]string, knownFQNs map[string]struct{}) (string, bool) {
	if fqn, ok := imports[typeName]; ok {
		_, known := knownFQNs[fqn]
		return fqn, known
	}
	if pkg == "" {
		return "", false
	}
	fqn := pkg + "." + typeName
	_, known := knownFQNs[fqn]
	return fqn, known
}

// ExtractMapperCalls finds `binding.method(` call sites whose left-hand
// identifier is one of the given mapper bindings.
func ExtractMapperCalls(text string, fields []types.MapperFieldRecord) []types.MapperCallRecord {
	return extractMapperCalls(sanitizer.Java(text), NewLineIndex(text), fields)
}

func extractMapperCalls(sanitized string, lines *LineIndex, fields []types.MapperFieldRecord) []types.MapperCallRecord {
	if len(fields) == 0 {
		return nil
	}
	byName := make(map[string]types.MapperFieldRecord, len(fields))
	for _, f := range fields {
		byName[f.FieldName] = f
	}

	var calls []types.MapperCallRecord
	offset := 0
	for _, line := range strings.Split(sanitized, "\n") {
		for _, loc := range reMapperCall.FindAllStringSubmatchIndex(line, -1) {
			field, ok := byName[line[loc[2]:loc[3]]]
			if !ok {
				continue
			}
			calls = append(calls, types.MapperCallRecord{
				FieldName:  field.FieldName,
				MethodName: line[loc[4]:loc[5]],
				Position:   lines.Position(offset + loc[0]),
				MapperFQN:  field.MapperFQN,
			})
		}
		offset += len(line) + 1
	}
	return calls
}

// FindMapperCalls runs the field pass and then the call pass over one file
func FindMapperCalls(text string, knownFQNs map[string]struct{}) ([]types.MapperFieldRecord, []types.MapperCallRecord) {
	sanitized := sanitizer.Java(text)
	pkg, _ := extractPackageName(sanitized)
	fields := extractMapperFields(sanitized, pkg, buildImportMap(sanitized), knownFQNs)
	return fields, extractMapperCalls(sanitized, NewLineIndex(text), fields)
}
