package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mapperlink/internal/types"
)

const userMapperXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN" "http://mybatis.org/dtd/mybatis-3-mapper.dtd">
<mapper namespace="com.example.mapper.UserMapper">

    <resultMap id="userResultMap" type="User">
        <id property="id" column="id"/>
    </resultMap>

    <sql id="columns">id, name</sql>

    <select id="findAll" resultMap="userResultMap">
        SELECT <include refid="columns"/> FROM users
    </select>

    <select id="findById" resultType="User">
        SELECT * FROM users WHERE id = #{id}
    </select>

    <insert id="insert" parameterType="User">
        INSERT INTO users (name) VALUES (#{name})
    </insert>

    <update id="update">UPDATE users SET name = #{name}</update>

    <delete id="deleteById">DELETE FROM users WHERE id = #{id}</delete>
</mapper>
`

func statementIDs(statements []types.StatementRecord) []string {
	ids := make([]string, 0, len(statements))
	for _, s := range statements {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestIsMyBatisXML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"doctype", `<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN" "x">`, true},
		{"doctype lower case", `<!doctype mapper public "-//MyBatis.org//DTD Mapper 3.0//EN">`, true},
		{"mapper namespace", `<mapper namespace="a.B"></mapper>`, true},
		{"mapper with other attrs", "<mapper\n  xmlns:x=\"y\"\n  namespace='a.B'>", true},
		{"spring beans", `<beans xmlns="http://www.springframework.org/schema/beans"></beans>`, false},
		{"mapper without namespace", `<mapper></mapper>`, false},
		{"commented mapper", `<!-- <mapper namespace="a.B"> -->`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMyBatisXML(tt.source))
		})
	}
}

func TestExtractNamespace(t *testing.T) {
	ns, ok := ExtractNamespace(`<mapper namespace="com.example.UserMapper">`)
	require.True(t, ok)
	assert.Equal(t, "com.example.UserMapper", ns)

	ns, ok = ExtractNamespace(`<mapper namespace='com.example.OrderMapper'>`)
	require.True(t, ok)
	assert.Equal(t, "com.example.OrderMapper", ns)

	_, ok = ExtractNamespace(`<mapper>`)
	assert.False(t, ok)
}

func TestExtractStatements(t *testing.T) {
	statements := ExtractStatements(userMapperXML)

	assert.Equal(t,
		[]string{"userResultMap", "columns", "findAll", "findById", "insert", "update", "deleteById"},
		statementIDs(statements))

	kinds := make([]types.StatementKind, 0, len(statements))
	for _, s := range statements {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []types.StatementKind{
		types.StatementResultMap, types.StatementSQL, types.StatementSelect, types.StatementSelect,
		types.StatementInsert, types.StatementUpdate, types.StatementDelete,
	}, kinds)

	// "    <select id="findAll"" on line 10, position at '<'
	assert.Equal(t, types.SourcePosition{Line: 10, Column: 4}, statements[2].Position)
}

func TestExtractStatements_MultiLineTag(t *testing.T) {
	src := `<mapper namespace="a.B">
  <select
      resultType="User"
      parameterType="long"
      id="findById">
    SELECT 1
  </select>
</mapper>`
	statements := ExtractStatements(src)
	require.Len(t, statements, 1)
	assert.Equal(t, "findById", statements[0].ID)
	assert.Equal(t, types.SourcePosition{Line: 1, Column: 2}, statements[0].Position)
}

func TestExtractStatements_KindNormalization(t *testing.T) {
	src := `<mapper namespace="a.B">
<SELECT id="a">x</SELECT>
<ResultMap id="b" type="T"></ResultMap>
<Sql id="c">x</Sql>
</mapper>`
	statements := ExtractStatements(src)
	require.Len(t, statements, 3)
	assert.Equal(t, types.StatementSelect, statements[0].Kind)
	assert.Equal(t, types.StatementResultMap, statements[1].Kind)
	assert.Equal(t, types.StatementSQL, statements[2].Kind)
}

func TestExtractStatements_IgnoresLookalikes(t *testing.T) {
	src := `<mapper namespace="a.B">
  <!-- <select id="commentedOut">x</select> -->
  <select id="real">
    <selectKey keyProperty="id" resultType="long">SELECT 1</selectKey>
    <![CDATA[ <select id="inCdata"> ]]>
  </select>
  <select resultMapId="x">no id</select>
  <insert databaseId="mysql" id="withDb">x</insert>
</mapper>`
	assert.Equal(t, []string{"real", "withDb"}, statementIDs(ExtractStatements(src)))
}

func TestExtractStatements_UTF16Column(t *testing.T) {
	src := "<mapper namespace=\"a.B\">\n<!--😀--><select id=\"x\"/>\n</mapper>"
	statements := ExtractStatements(src)
	require.Len(t, statements, 1)
	// "<!--😀-->" is 4 + 2 + 3 UTF-16 units
	assert.Equal(t, types.SourcePosition{Line: 1, Column: 9}, statements[0].Position)
}

func TestGetIDAtPosition(t *testing.T) {
	// line 14: `    <select id="findById" resultType="User">`
	// value "findById" spans columns 16..24
	tests := []struct {
		column int
		want   string
		ok     bool
	}{
		{16, "findById", true},
		{20, "findById", true},
		{24, "findById", true},
		{15, "", false},
		{25, "", false},
		{4, "", false},
	}
	for _, tt := range tests {
		got, ok := GetIDAtPosition(userMapperXML, 14, tt.column)
		assert.Equal(t, tt.ok, ok, "column %d", tt.column)
		assert.Equal(t, tt.want, got, "column %d", tt.column)
	}

	id, ok := GetIDAtPosition(`<select id='single'/>`, 0, 13)
	require.True(t, ok)
	assert.Equal(t, "single", id)

	_, ok = GetIDAtPosition(userMapperXML, 999, 0)
	assert.False(t, ok)
	_, ok = GetIDAtPosition(userMapperXML, -1, 0)
	assert.False(t, ok)
}

func TestParseXMLMapper(t *testing.T) {
	doc := ParseXMLMapper("file:///UserMapper.xml", userMapperXML)
	require.NotNil(t, doc)

	assert.Equal(t, "file:///UserMapper.xml", doc.URI)
	assert.Equal(t, "com.example.mapper.UserMapper", doc.Namespace)
	assert.Len(t, doc.Statements, 7)
	require.Contains(t, doc.StatementByID, "findById")
	assert.Equal(t, 14, doc.StatementByID["findById"].Position.Line)
}

func TestParseXMLMapper_DuplicateIDLastWins(t *testing.T) {
	src := `<mapper namespace="a.B">
<select id="dup">1</select>
<select id="dup">2</select>
</mapper>`
	doc := ParseXMLMapper("u", src)
	require.NotNil(t, doc)

	assert.Len(t, doc.Statements, 2)
	assert.Equal(t, 2, doc.StatementByID["dup"].Position.Line)
}

func TestParseXMLMapper_Rejects(t *testing.T) {
	assert.Nil(t, ParseXMLMapper("u", `<beans><bean id="x"/></beans>`))
	assert.Nil(t, ParseXMLMapper("u", `<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN"><mapper></mapper>`))
	assert.Nil(t, ParseXMLMapper("u", ""))
}
