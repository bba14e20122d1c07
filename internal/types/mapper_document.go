package types

// XMLMapperDocument is the parsed form of one MyBatis mapper XML file.
//
// StatementByID is derived from Statements with last-write-wins on duplicate
// ids, while JavaMapperDocument.MethodByName keeps the first declaration.
// Existing navigation results depend on both policies; do not unify them.
type XMLMapperDocument struct {
	URI           string                     `json:"uri"`
	Namespace     string                     `json:"namespace"`
	Statements    []StatementRecord          `json:"statements"`
	StatementByID map[string]StatementRecord `json:"-"`
	ContentHash   uint64                     `json:"-"`
}

// NewXMLMapperDocument builds the id lookup map from the ordered statements
func NewXMLMapperDocument(uri, namespace string, statements []StatementRecord) *XMLMapperDocument {
	byID := make(map[string]StatementRecord, len(statements))
	for _, st := range statements {
		byID[st.ID] = st
	}
	return &XMLMapperDocument{
		URI:           uri,
		Namespace:     namespace,
		Statements:    statements,
		StatementByID: byID,
	}
}

// Clone returns a deep copy safe to hand out of the index
func (d *XMLMapperDocument) Clone() *XMLMapperDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Statements = append([]StatementRecord(nil), d.Statements...)
	out.StatementByID = make(map[string]StatementRecord, len(d.StatementByID))
	for k, v := range d.StatementByID {
		out.StatementByID[k] = v
	}
	return &out
}

// JavaMapperDocument is the parsed form of one Java mapper interface
type JavaMapperDocument struct {
	URI                string                  `json:"uri"`
	PackageName        string                  `json:"package"`
	InterfaceName      string                  `json:"interface"`
	FullyQualifiedName string                  `json:"fqn"`
	Methods            []MethodRecord          `json:"methods"`
	MethodByName       map[string]MethodRecord `json:"-"`
	ContentHash        uint64                  `json:"-"`
}

// NewJavaMapperDocument builds the name lookup map. Overloads collapse to the
// first declaration; Methods still holds every one of them.
func NewJavaMapperDocument(uri, packageName, interfaceName string, methods []MethodRecord) *JavaMapperDocument {
	byName := make(map[string]MethodRecord, len(methods))
	for _, m := range methods {
		if _, seen := byName[m.Name]; seen {
			continue
		}
		byName[m.Name] = m
	}
	return &JavaMapperDocument{
		URI:                uri,
		PackageName:        packageName,
		InterfaceName:      interfaceName,
		FullyQualifiedName: packageName + "." + interfaceName,
		Methods:            methods,
		MethodByName:       byName,
	}
}

// Clone returns a deep copy safe to hand out of the index
func (d *JavaMapperDocument) Clone() *JavaMapperDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Methods = append([]MethodRecord(nil), d.Methods...)
	out.MethodByName = make(map[string]MethodRecord, len(d.MethodByName))
	for k, v := range d.MethodByName {
		out.MethodByName[k] = v
	}
	return &out
}
