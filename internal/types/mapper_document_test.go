package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewXMLMapperDocument_LastIDWins(t *testing.T) {
	doc := NewXMLMapperDocument("file:///m.xml", "com.example.UserMapper", []StatementRecord{
		{ID: "findById", Kind: StatementSelect, Position: SourcePosition{Line: 3}},
		{ID: "findById", Kind: StatementSelect, Position: SourcePosition{Line: 9}},
	})

	require.Len(t, doc.Statements, 2)
	assert.Equal(t, 9, doc.StatementByID["findById"].Position.Line)
}

func TestNewJavaMapperDocument_FirstMethodWins(t *testing.T) {
	doc := NewJavaMapperDocument("file:///UserMapper.java", "com.example", "UserMapper", []MethodRecord{
		{Name: "findById", Position: SourcePosition{Line: 4, Column: 9}},
		{Name: "findById", Position: SourcePosition{Line: 6, Column: 9}},
	})

	assert.Equal(t, "com.example.UserMapper", doc.FullyQualifiedName)
	require.Len(t, doc.Methods, 2)
	assert.Equal(t, 4, doc.MethodByName["findById"].Position.Line)
}

func TestClone_IsDeep(t *testing.T) {
	xml := NewXMLMapperDocument("u", "ns", []StatementRecord{{ID: "a", Kind: StatementInsert}})
	xc := xml.Clone()
	xc.Statements[0].ID = "changed"
	xc.StatementByID["b"] = StatementRecord{ID: "b"}
	assert.Equal(t, "a", xml.Statements[0].ID)
	assert.NotContains(t, xml.StatementByID, "b")

	java := NewJavaMapperDocument("u", "p", "I", []MethodRecord{{Name: "m"}})
	jc := java.Clone()
	jc.Methods[0].Name = "changed"
	delete(jc.MethodByName, "m")
	assert.Equal(t, "m", java.Methods[0].Name)
	assert.Contains(t, java.MethodByName, "m")

	var nilDoc *XMLMapperDocument
	assert.Nil(t, nilDoc.Clone())
}

func TestIndexStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
}

func TestIndexStateText(t *testing.T) {
	for _, state := range []IndexState{StateUninitialized, StateInitializing, StateReady} {
		text, err := state.MarshalText()
		require.NoError(t, err)

		var decoded IndexState
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, state, decoded)
	}

	var s IndexState
	assert.Error(t, s.UnmarshalText([]byte("indexing")))
}

func TestStatementKind_IsSQLStatement(t *testing.T) {
	assert.True(t, StatementSelect.IsSQLStatement())
	assert.True(t, StatementDelete.IsSQLStatement())
	assert.False(t, StatementResultMap.IsSQLStatement())
	assert.False(t, StatementSQL.IsSQLStatement())
}
