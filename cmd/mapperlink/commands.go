package main

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/standardbeagle/mapperlink/internal/indexing"
	"github.com/standardbeagle/mapperlink/internal/types"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

const suggestionLimit = 5

// readyIndex loads the session and runs the first scan
func readyIndex(c *cli.Context) (*session, *indexing.MapperIndex, error) {
	sess, err := sessionFrom(c)
	if err != nil {
		return nil, nil, err
	}
	idx := sess.open()
	if err := idx.EnsureInitialized(c.Context); err != nil {
		return nil, nil, err
	}
	return sess, idx, nil
}

// indexReport is the structured output of the index command
type indexReport struct {
	Root     string                 `json:"root" yaml:"root"`
	Stats    indexing.IndexStats    `json:"stats" yaml:"stats"`
	Coverage map[string]interface{} `json:"coverage" yaml:"coverage"`
}

func indexCommand(c *cli.Context) error {
	sess, idx, err := readyIndex(c)
	if err != nil {
		return err
	}
	stats := idx.Stats()
	coverage := idx.Coverage()

	if format := c.String("format"); format != formatText {
		return writeStructured(c.App.Writer, format, indexReport{
			Root:     sess.cfg.Project.Root,
			Stats:    stats,
			Coverage: coverage.FormatAsJSON(),
		})
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Indexed %s in %v\n", sess.cfg.Project.Root, stats.LastScanDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Files scanned:      %d (%d failed)\n\n", stats.LastScanFiles, stats.LastScanFailures)
	fmt.Fprint(w, coverage.FormatAsText())
	return nil
}

func statementCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: %s statement NAMESPACE ID", c.App.Name)
	}
	namespace, id := c.Args().Get(0), c.Args().Get(1)

	sess, idx, err := readyIndex(c)
	if err != nil {
		return err
	}
	result := lookupResult{}
	if loc, ok := idx.FindStatement(namespace, id); ok {
		result.Found, result.Location = true, &loc
	} else {
		result.Suggestions = idx.SuggestStatementIDs(namespace, id, suggestionLimit)
		if _, known := idx.XMLMapperByNamespace(namespace); !known {
			result.Suggestions = idx.SuggestNamespaces(namespace, suggestionLimit)
		}
	}
	return writeLookup(c, sess, result, fmt.Sprintf("statement %s.%s", namespace, id))
}

func methodCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: %s method FQN NAME", c.App.Name)
	}
	fqn, name := c.Args().Get(0), c.Args().Get(1)

	sess, idx, err := readyIndex(c)
	if err != nil {
		return err
	}
	result := lookupResult{}
	if loc, ok := idx.FindMethod(fqn, name); ok {
		result.Found, result.Location = true, &loc
	} else {
		result.Suggestions = idx.SuggestMethodNames(fqn, name, suggestionLimit)
		if _, known := idx.JavaMapperByFQN(fqn); !known {
			result.Suggestions = idx.SuggestNamespaces(fqn, suggestionLimit)
		}
	}
	return writeLookup(c, sess, result, fmt.Sprintf("method %s.%s", fqn, name))
}

// writeLookup prints a lookup answer. A miss is an error so scripts can
// test the exit status.
func writeLookup(c *cli.Context, sess *session, result lookupResult, what string) error {
	format := c.String("format")
	if format != formatText {
		if err := writeStructured(c.App.Writer, format, result); err != nil {
			return err
		}
	} else if result.Found {
		fmt.Fprintln(c.App.Writer, formatLocation(*result.Location, sess.cfg.Project.Root))
	} else if len(result.Suggestions) > 0 {
		fmt.Fprintf(c.App.Writer, "Did you mean: %s\n", strings.Join(result.Suggestions, ", "))
	}

	if !result.Found {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}

// fileURI turns a command-line file argument into a URI. Relative paths
// are taken from the working directory.
func fileURI(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		if _, err := pathutil.FromURI(arg); err != nil {
			return "", err
		}
		return arg, nil
	}
	if arg == "" {
		return "", fmt.Errorf("file is required")
	}
	return pathutil.ToURI(arg), nil
}

func usagesCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s usages FILE", c.App.Name)
	}
	uri, err := fileURI(c.Args().Get(0))
	if err != nil {
		return err
	}

	sess, idx, err := readyIndex(c)
	if err != nil {
		return err
	}
	usages, err := idx.FindUsages(c.Context, uri)
	if err != nil {
		return err
	}

	if format := c.String("format"); format != formatText {
		return writeStructured(c.App.Writer, format, usages)
	}

	w := c.App.Writer
	root := sess.cfg.Project.Root
	if len(usages) == 0 {
		fmt.Fprintln(w, "No mapper calls found")
		return nil
	}
	for _, u := range usages {
		site := formatLocation(types.Location{URI: uri, Position: u.Call.Position}, root)
		target := "(no statement)"
		if u.Statement != nil {
			target = formatLocation(*u.Statement, root)
		}
		fmt.Fprintf(w, "%s  %s.%s -> %s\n", site, u.Call.FieldName, u.Call.MethodName, target)
	}
	return nil
}

// positionResult is the structured output of the at command
type positionResult struct {
	Found    bool            `json:"found" yaml:"found"`
	Language string          `json:"language" yaml:"language"`
	Target   *types.Location `json:"target,omitempty" yaml:"target,omitempty"`
}

func atCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: %s at FILE LINE COLUMN", c.App.Name)
	}
	uri, err := fileURI(c.Args().Get(0))
	if err != nil {
		return err
	}
	line, err := positiveArg("LINE", c.Args().Get(1))
	if err != nil {
		return err
	}
	column, err := positiveArg("COLUMN", c.Args().Get(2))
	if err != nil {
		return err
	}
	language, err := languageOf(uri, c.String("language"))
	if err != nil {
		return err
	}

	sess, idx, err := readyIndex(c)
	if err != nil {
		return err
	}
	text, err := indexing.NewFileReader(sess.cfg.Index.MaxFileSize).ReadText(c.Context, uri)
	if err != nil {
		return err
	}

	var (
		loc types.Location
		ok  bool
	)
	if language == "java" {
		loc, ok = idx.ResolveJavaCursor(text, line-1, column-1)
	} else {
		loc, ok = idx.ResolveXMLCursor(text, line-1, column-1)
	}

	result := positionResult{Found: ok, Language: language}
	if ok {
		result.Target = &loc
	}
	if format := c.String("format"); format != formatText {
		if err := writeStructured(c.App.Writer, format, result); err != nil {
			return err
		}
	} else if ok {
		fmt.Fprintln(c.App.Writer, formatLocation(loc, sess.cfg.Project.Root))
	}
	if !ok {
		return fmt.Errorf("nothing to resolve at %d:%d", line, column)
	}
	return nil
}

func positiveArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, value)
	}
	return n, nil
}

// languageOf picks java or xml from an explicit override or the extension
func languageOf(uri, override string) (string, error) {
	switch strings.ToLower(override) {
	case "java", "xml":
		return strings.ToLower(override), nil
	case "":
	default:
		return "", fmt.Errorf("unsupported language %q", override)
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".java":
		return "java", nil
	case ".xml":
		return "xml", nil
	}
	return "", fmt.Errorf("cannot tell whether %s is java or xml; set --language", uri)
}
