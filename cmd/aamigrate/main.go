package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"aamigrate/internal/catalog"
	"aamigrate/internal/db"
	"aamigrate/internal/logger"
	"aamigrate/internal/migration"
	"aamigrate/internal/model"
	"aamigrate/internal/source"
	"aamigrate/pkg/config"
)

const defaultConfig = "aamigrate.yaml"

type Globals struct {
	Config   string `help:"Path to config YAML (default ${default_config} when present)." type:"path"`
	LogLevel string `help:"Log level: debug, info, warn, error." name:"log-level"`
	Repo     string `help:"Repository root that model paths are relative to."`
}

type CLI struct {
	Globals

	Generate GenerateCmd `cmd:"" help:"Print the migration script for a model class."`
	Show     ShowCmd     `cmd:"" help:"Print the columns extracted from a model class."`
	Types    TypesCmd    `cmd:"" help:"Print the custom type mappings."`
	Inspect  InspectCmd  `cmd:"" help:"Print the schema of a live SQLite database file."`
}

// app is what every command runs against.
type app struct {
	ctx context.Context
	cfg config.AppConfig
	src source.Source
	out io.Writer
}

func newApp(g Globals, out io.Writer) (*app, error) {
	cfg := config.Default()
	path := g.Config
	if path == "" {
		path = defaultConfig
	}
	c, err := config.LoadFile(path)
	switch {
	case err == nil:
		logger.Debug("config file %s", path)
		cfg = c
	case g.Config == "" && errors.Is(err, fs.ErrNotExist):
		// no config file, defaults apply
	default:
		return nil, fmt.Errorf("config: %w", err)
	}

	if g.Repo != "" {
		cfg.Source.Root = g.Repo
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	return &app{
		ctx: context.Background(),
		cfg: cfg,
		src: source.NewRepository(cfg.Source.Root, cfg.Source.Git),
		out: out,
	}, nil
}

// catalog builds the type mappings: built-ins, then discovered serializers,
// then configured mappings.
func (a *app) catalog(root string, discover bool) (catalog.Catalog, error) {
	if root == "" {
		root = a.cfg.Types.Root
	}
	cat := catalog.Builtins()
	if discover && a.cfg.DiscoverTypes() {
		found, err := catalog.Discover(root)
		if err != nil {
			return nil, err
		}
		cat = found
	}
	cat = cat.Merge(a.cfg.Types.Mappings)
	logger.Debug("mapped types: %s", strings.Join(cat.Types(), ", "))
	return cat, nil
}

// unresolved fails under strict when some column types are unknown, and only
// warns otherwise.
func unresolved(warnings []error, strict bool) error {
	if len(warnings) == 0 {
		return nil
	}
	if strict {
		return fmt.Errorf("%d column types could not be resolved", len(warnings))
	}
	logger.Warn("%d column types could not be resolved", len(warnings))
	return nil
}

func (a *app) writeYAML(v interface{}) error {
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// revisions returns the snapshots to compare: HEAD and the working copy, or
// a commit and its parent.
func revisions(commit string) (from, to source.Revision) {
	if commit == "" {
		return source.At("HEAD"), source.Live
	}
	to = source.At(commit)
	return to.Parent(), to
}

type GenerateCmd struct {
	Model      string `arg:"" help:"Model class file."`
	Commit     string `arg:"" optional:"" help:"Commit that changed the model. Without it HEAD is compared with the working copy."`
	TypesRoot  string `help:"Directory searched for serializers." name:"types-root"`
	NoDiscover bool   `help:"Use only built-in and configured type mappings." name:"no-discover"`
	Strict     bool   `help:"Fail instead of printing a script with unresolved column types."`
}

func (c *GenerateCmd) Run(a *app) error {
	cat, err := a.catalog(c.TypesRoot, !c.NoDiscover)
	if err != nil {
		return err
	}
	from, to := revisions(c.Commit)
	s, err := migration.Run(a.ctx, a.src, c.Model, from, to, cat)
	if err != nil {
		return err
	}
	if err := unresolved(s.Warnings, c.Strict); err != nil {
		return err
	}
	_, err = s.WriteTo(a.out)
	return err
}

type ShowCmd struct {
	Model      string `arg:"" help:"Model class file."`
	Revision   string `help:"Git revision to read; the working copy by default."`
	SQL        bool   `help:"Print the CREATE TABLE statement instead of the columns." name:"sql"`
	TypesRoot  string `help:"Directory searched for serializers, with --sql." name:"types-root"`
	NoDiscover bool   `help:"Use only built-in and configured type mappings, with --sql." name:"no-discover"`
	Strict     bool   `help:"Fail instead of printing a statement with unresolved column types, with --sql."`
}

func (c *ShowCmd) Run(a *app) error {
	rev := source.Live
	if c.Revision != "" {
		rev = source.At(c.Revision)
	}
	m, err := model.NewExtractor(a.src).Extract(a.ctx, c.Model, rev)
	if err != nil {
		return err
	}
	if !c.SQL {
		return a.writeYAML(m)
	}
	cat, err := a.catalog(c.TypesRoot, !c.NoDiscover)
	if err != nil {
		return err
	}
	stmt, warnings := migration.CreateTable(m, cat)
	if err := unresolved(warnings, c.Strict); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, stmt)
	return err
}

type TypesCmd struct {
	Root       string `help:"Directory searched for serializers."`
	NoDiscover bool   `help:"Show only built-in and configured type mappings." name:"no-discover"`
}

func (c *TypesCmd) Run(a *app) error {
	cat, err := a.catalog(c.Root, !c.NoDiscover)
	if err != nil {
		return err
	}
	return a.writeYAML(cat)
}

type InspectCmd struct {
	Database string        `arg:"" help:"SQLite database file." type:"existingfile"`
	Table    string        `arg:"" optional:"" help:"Table to describe; all table names when omitted."`
	Timeout  time.Duration `help:"Connect timeout." default:"10s"`
}

func (c *InspectCmd) Run(a *app) error {
	conn, err := db.Open(a.ctx, c.Database, c.Timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if c.Table == "" {
		names, err := db.Tables(a.ctx, conn)
		if err != nil {
			return err
		}
		return a.writeYAML(names)
	}
	t, err := db.InspectTable(a.ctx, conn, c.Table)
	if err != nil {
		return err
	}
	return a.writeYAML(t)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("aamigrate"),
		kong.Description("Generate SQLite migration scripts from changes to ActiveAndroid model classes."),
		kong.UsageOnError(),
		kong.Vars{"default_config": defaultConfig},
	)

	a, err := newApp(cli.Globals, os.Stdout)
	if err != nil {
		logger.Fatal("%v", err)
	}
	if err := ctx.Run(a); err != nil {
		logger.Fatal("%v", err)
	}
}
