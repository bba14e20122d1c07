package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/mapperlink/internal/config"
	"github.com/standardbeagle/mapperlink/internal/debug"
	"github.com/standardbeagle/mapperlink/internal/indexing"
	"github.com/standardbeagle/mapperlink/internal/metrics"
	"github.com/standardbeagle/mapperlink/internal/version"

	"github.com/urfave/cli/v2"
)

var Version = version.Version

const sessionKey = "session"

// session carries what Before resolved to the command actions
type session struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	index   *indexing.MapperIndex
}

// open returns the session's index, creating it on first use
func (s *session) open() *indexing.MapperIndex {
	if s.index == nil {
		s.index = indexing.NewMapperIndex(s.cfg, indexing.WithMetrics(s.metrics))
	}
	return s.index
}

func (s *session) close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Dispose()
}

func sessionFrom(c *cli.Context) (*session, error) {
	sess, ok := c.App.Metadata[sessionKey].(*session)
	if !ok || sess == nil {
		return nil, fmt.Errorf("configuration was not loaded")
	}
	return sess, nil
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		// Fall back to the working directory when no marker is found
		if detected, _, err := indexing.GetProjectRoot(""); err == nil {
			root = detected
		} else if root, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	var cfg *config.Config
	if configPath := c.String("config"); configPath != "" {
		if cfg, err = config.LoadFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		if c.IsSet("root") || cfg.Project.Root == "" {
			cfg.Project.Root = absRoot
		}
	} else if cfg, err = config.LoadWithRoot(absRoot); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", absRoot, err)
	}

	// Apply CLI flag overrides
	if globs := c.StringSlice("xml-glob"); len(globs) > 0 {
		cfg.Mappers.XMLGlobs = globs
	}
	if globs := c.StringSlice("java-glob"); len(globs) > 0 {
		cfg.Mappers.JavaGlobs = globs
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "mapperlink",
		Usage:                  "Cross-reference MyBatis mapper interfaces and XML statements",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .mapperlink.kdl in the project root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to index (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "xml-glob",
				Usage: "Mapper XML candidate globs (e.g., --xml-glob '**/mapper/*.xml')",
			},
			&cli.StringSliceFlag{
				Name:  "java-glob",
				Usage: "Mapper interface candidate globs (e.g., --java-glob '**/*Mapper.java')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs (stderr, or a temp log file for mcp); MAPPERLINK_DEBUG=index,watch selects components",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, yaml",
				Value:   formatText,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Scan the workspace and print index statistics and coverage",
				Action:  indexCommand,
			},
			{
				Name:      "statement",
				Aliases:   []string{"stmt"},
				Usage:     "Locate the XML statement for a namespace and id",
				ArgsUsage: "NAMESPACE ID",
				Action:    statementCommand,
			},
			{
				Name:      "method",
				Aliases:   []string{"m"},
				Usage:     "Locate the Java method for a mapper FQN and method name",
				ArgsUsage: "FQN NAME",
				Action:    methodCommand,
			},
			{
				Name:      "usages",
				Aliases:   []string{"u"},
				Usage:     "List mapper calls in a Java file with their XML statements",
				ArgsUsage: "FILE",
				Action:    usagesCommand,
			},
			{
				Name:      "at",
				Usage:     "Resolve a position in Java or mapper XML to its counterpart",
				ArgsUsage: "FILE LINE COLUMN",
				Description: `LINE and COLUMN are 1-based, the column counted in UTF-16 code units.
The language is taken from the file extension unless --language is set.

Examples:
  mapperlink at src/main/java/com/acme/UserMapper.java 12 17
  mapperlink at src/main/resources/mapper/UserMapper.xml 8 18`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Treat FILE as java or xml",
					},
				},
				Action: atCommand,
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Index the workspace and keep it current until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address (e.g., :9464)",
					},
					&cli.DurationFlag{
						Name:  "report-interval",
						Usage: "Print index statistics when they change, checked at this interval",
						Value: 0,
					},
				},
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start the Model Context Protocol server on stdio",
				Action: mcpCommand,
			},
		},
		Before: func(c *cli.Context) error {
			// Skip initialization for help commands
			if c.NArg() == 0 || c.Args().Get(0) == "help" || c.Bool("help") || c.Bool("version") {
				return nil
			}
			isMCP := c.Args().Get(0) == "mcp"
			if isMCP {
				// stdio is the protocol channel from here on
				debug.SetMCPMode(true)
			}
			if c.Bool("debug") {
				debug.EnableDebug = "true"
			}
			if err := setupDebugOutput(c, isMCP); err != nil {
				return err
			}
			if _, err := parseFormat(c.String("format")); err != nil {
				return err
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			debug.LogCLI("Project root: %s\n", cfg.Project.Root)

			if c.App.Metadata == nil {
				c.App.Metadata = map[string]interface{}{}
			}
			c.App.Metadata[sessionKey] = &session{
				cfg:     cfg,
				metrics: metrics.New(nil),
			}
			return nil
		},
		After: func(c *cli.Context) error {
			var err error
			if sess, ok := c.App.Metadata[sessionKey].(*session); ok && sess != nil {
				err = sess.close()
			}
			if closeErr := debug.CloseDebugLog(); err == nil {
				err = closeErr
			}
			return err
		},
	}
}

// setupDebugOutput routes debug logs when they were requested. MCP mode
// gets a log file since stdout and stdin carry the protocol.
func setupDebugOutput(c *cli.Context, isMCP bool) error {
	if !debug.Requested() {
		return nil
	}
	debug.SetTimestamps(true)
	if !isMCP {
		debug.SetDebugOutput(c.App.ErrWriter)
		return nil
	}
	if _, err := debug.InitDebugLogFile(""); err != nil {
		return err
	}
	return nil
}

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, version.FullInfo())
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
