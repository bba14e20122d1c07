package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mapperlink/internal/types"
)

const userMapperJava = `package com.example.mapper;

import java.util.List;
import org.apache.ibatis.annotations.Param;

/**
 * User Mapper Interface
 * User notAMethod(Long id);
 */
public interface UserMapper {

    List<User> findAll();

    User findById(@Param("id") Long id);

    void insert(User user);

    void update(User user);

    void deleteById(@Param("id") Long id);

    // List<User> commented(String name);
    List<User> findByName(String name);
}
`

func methodNames(methods []types.MethodRecord) []string {
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	return names
}

func TestExtractPackageName(t *testing.T) {
	pkg, ok := ExtractPackageName("package com.example.project.dao.mapper;\n\ninterface UserMapper {}")
	require.True(t, ok)
	assert.Equal(t, "com.example.project.dao.mapper", pkg)

	_, ok = ExtractPackageName("public interface UserMapper {}")
	assert.False(t, ok)

	_, ok = ExtractPackageName("// package com.hidden;\ninterface X {}")
	assert.False(t, ok, "package inside a comment must not be found")
}

func TestExtractInterfaceName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		ok     bool
	}{
		{"public interface", "package a;\npublic interface UserMapper {\n}", "UserMapper", true},
		{"package-private interface", "package a;\ninterface InternalMapper {\n}", "InternalMapper", true},
		{"annotated on prior line", "package a;\n@Mapper\n@Repository(\"x\")\npublic interface OrderMapper {}", "OrderMapper", true},
		{"annotated on same line", "package a;\n@Mapper public interface ItemMapper {}", "ItemMapper", true},
		{"abstract class", "package a;\npublic abstract class BaseDao<T> {}", "BaseDao", true},
		{"plain class rejected", "package a;\npublic class UserMapperImpl {\n}", "", false},
		{"annotation type rejected", "package a;\npublic @interface Marker {}", "", false},
		{"interface in comment rejected", "package a;\n/* interface Fake {} */\nclass Real {}", "", false},
		{"class then interface", "package a;\nclass Holder {}\ninterface Inner {}", "Inner", true},
		{"javadoc on same line", "package a;\n/** doc */ public interface UserMapper {}", "UserMapper", true},
		{"nested annotation arguments", "package a;\n@X(a = @Y(b = 1)) public interface UserMapper {}", "UserMapper", true},
		{"multi-line annotation arguments", "package a;\n@CacheNamespace(\n    implementation = @Impl(size = 2),\n    flush = 60)\npublic interface UserMapper {}", "UserMapper", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractInterfaceName(tt.source)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, IsMapperInterface(tt.source))
		})
	}
}

func TestExtractMethods_Simple(t *testing.T) {
	methods := ExtractMethods(userMapperJava)

	assert.Equal(t,
		[]string{"findAll", "findById", "insert", "update", "deleteById", "findByName"},
		methodNames(methods))
}

func TestExtractMethods_Positions(t *testing.T) {
	methods := ExtractMethods(userMapperJava)
	require.NotEmpty(t, methods)

	// "    List<User> findAll();" on line 11
	assert.Equal(t, types.SourcePosition{Line: 11, Column: 15}, methods[0].Position)
	// "    User findById(...)" on line 13
	assert.Equal(t, types.SourcePosition{Line: 13, Column: 9}, methods[1].Position)
}

func TestExtractMethods_Generics(t *testing.T) {
	src := `package a;
public interface M {
    Map<String, List<Object>> findByCondition(Map<String, Object> params);
    List<User>[] findAll();
    <T> T generic(Class<T> type);
    int count();
}`
	assert.Equal(t, []string{"findByCondition", "findAll", "generic", "count"}, methodNames(ExtractMethods(src)))
}

func TestExtractMethods_AnnotatedLine(t *testing.T) {
	src := `package a;
public interface M {

    @Select("SELECT * FROM users WHERE id = #{id}")
    User findById(Long id);
}`
	methods := ExtractMethods(src)
	require.Len(t, methods, 1)
	assert.Equal(t, "findById", methods[0].Name)
	assert.Equal(t, 4, methods[0].Position.Line)
}

func TestExtractMethods_MultiLineSignature(t *testing.T) {
	src := `package a;
public interface M {
    int updateUser(
        @Param("id") Long id,
        @Param("name") String name
    ) throws SQLException, java.io.IOException;

    List<User> search(@Param(value = "q") String q,
                      @Param("limit") int limit);
}`
	methods := ExtractMethods(src)
	assert.Equal(t, []string{"updateUser", "search"}, methodNames(methods))
	assert.Equal(t, types.SourcePosition{Line: 2, Column: 8}, methods[0].Position)
	assert.Equal(t, types.SourcePosition{Line: 7, Column: 15}, methods[1].Position)
}

func TestExtractMethods_ThrowsClause(t *testing.T) {
	src := "package a;\ninterface M {\n    User findById(@Param(\"id\") Long id) throws Exception;\n}"
	assert.Equal(t, []string{"findById"}, methodNames(ExtractMethods(src)))
}

func TestExtractMethods_AbstractClassBodies(t *testing.T) {
	src := `package a;
public abstract class BaseDao {
    public BaseDao(DataSource ds) {
        super(ds);
    }

    public abstract List<User> findAll();

    protected int count(String table) {
        if (table == null) {
            return compute(table);
        }
        for (int i = 0; i < 3; i++) {
            log.info("x");
        }
        User u = new User(table);
        return helper(u);
    }
}`
	assert.Equal(t, []string{"findAll", "count"}, methodNames(ExtractMethods(src)))
}

func TestExtractMethods_LambdaCallsAreNotDeclarations(t *testing.T) {
	src := `package a;
public interface JobMapper {
    default void go() {
        Runnable r = () -> run();
        Runnable q = ()->run();
    }
    void run();
    List<Job> find(int id);
}`
	methods := ExtractMethods(src)
	assert.Equal(t, []string{"go", "run", "find"}, methodNames(methods))

	doc := ParseJavaMapper("file:///a/JobMapper.java", src)
	require.NotNil(t, doc)
	assert.Equal(t, types.SourcePosition{Line: 6, Column: 9}, doc.MethodByName["run"].Position)
}

func TestExtractMethods_IgnoresCommentsAndStrings(t *testing.T) {
	src := `package a;
interface M {
    // User hidden(Long id);
    /* User alsoHidden(Long id); */
    @Select("User inString(Long id);")
    User visible(Long id);
}`
	assert.Equal(t, []string{"visible"}, methodNames(ExtractMethods(src)))
}

func TestExtractMethods_Overloads(t *testing.T) {
	src := `package com.example.mapper;
public interface UserMapper {
    User findById(Long id);
    User findById(String id, boolean active);
}`
	doc := ParseJavaMapper("file:///UserMapper.java", src)
	require.NotNil(t, doc)

	require.Len(t, doc.Methods, 2)
	assert.Equal(t, 2, doc.MethodByName["findById"].Position.Line)
}

func TestExtractMethods_UTF16Column(t *testing.T) {
	src := "package a;\ninterface M {\n    /*é😀*/ User find();\n}"
	methods := ExtractMethods(src)
	require.Len(t, methods, 1)
	// "    /*é😀*/ User " is 4 + 2 + 1 + 2 + 2 + 1 + 5 = 17 UTF-16 units
	assert.Equal(t, types.SourcePosition{Line: 2, Column: 17}, methods[0].Position)
}

func TestGetMethodNameAtPosition(t *testing.T) {
	// line 13: "    User findById(@Param("id") Long id);"
	name, ok := GetMethodNameAtPosition(userMapperJava, 13, 9)
	require.True(t, ok)
	assert.Equal(t, "findById", name)

	name, ok = GetMethodNameAtPosition(userMapperJava, 13, 17)
	require.True(t, ok, "end of name is inclusive")
	assert.Equal(t, "findById", name)

	_, ok = GetMethodNameAtPosition(userMapperJava, 13, 4)
	assert.False(t, ok, "return type is not the method name")

	_, ok = GetMethodNameAtPosition(userMapperJava, 500, 0)
	assert.False(t, ok)
}

func TestParseJavaMapper(t *testing.T) {
	doc := ParseJavaMapper("file:///UserMapper.java", userMapperJava)
	require.NotNil(t, doc)

	assert.Equal(t, "file:///UserMapper.java", doc.URI)
	assert.Equal(t, "com.example.mapper", doc.PackageName)
	assert.Equal(t, "UserMapper", doc.InterfaceName)
	assert.Equal(t, "com.example.mapper.UserMapper", doc.FullyQualifiedName)
	assert.Len(t, doc.Methods, 6)
	assert.Contains(t, doc.MethodByName, "findByName")
	assert.NotContains(t, doc.MethodByName, "notAMethod")
	assert.NotContains(t, doc.MethodByName, "commented")
}

func TestParseJavaMapper_Rejects(t *testing.T) {
	assert.Nil(t, ParseJavaMapper("u", "package a;\npublic class Service {\n void run() {}\n}"))
	assert.Nil(t, ParseJavaMapper("u", "public interface UserMapper {\n User findById(Long id);\n}"))
	assert.Nil(t, ParseJavaMapper("u", ""))
}
