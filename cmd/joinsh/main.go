// Command joinsh is a minimal CLI front door for the join execution
// subsystem: given a bbolt-backed table file, a declared schema for each
// table, a join spec string, and a predicate query string, it runs the
// query and prints the joined rows, or (-explain) the pretty-printed query
// plan instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/joinspec"
	"github.com/kvrowdb/joinengine/kv/launch"
	"github.com/kvrowdb/joinengine/kvconfig"
	"github.com/kvrowdb/joinengine/kvstore"
)

// tableFlag accumulates repeated -table flags.
type tableFlag struct{ specs []string }

func (t *tableFlag) String() string { return strings.Join(t.specs, " ") }
func (t *tableFlag) Set(v string) error {
	t.specs = append(t.specs, v)
	return nil
}

func main() {
	var (
		dbPath     = flag.String("db", "", "path to the bbolt database file")
		configPath = flag.String("config", "", "path to a TOML kvconfig.Config file; package defaults if empty")
		specText   = flag.String("spec", "", `join spec text, e.g. "orders : customers >: shipments"`)
		queryText  = flag.String("query", "true", "predicate query text over dotted column names")
		argsText   = flag.String("args", "", "comma-separated bind argument values, in ?N order")
		explain    = flag.Bool("explain", false, "print the query plan instead of running it")
	)
	var tables tableFlag
	flag.Var(&tables, "table", `declName@bucket=col:type[:key],...  (repeatable, one per join spec source)`)
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	if *dbPath == "" || *specText == "" || len(tables.specs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: joinsh -db PATH -table DECL [-table DECL ...] -spec SPEC [-query QUERY] [-args A,B,...] [-explain]")
		os.Exit(2)
	}

	cfg := kvconfig.Default()
	if *configPath != "" {
		loaded, err := kvconfig.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("loading config")
		}
		cfg = loaded
	}
	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logrus.SetLevel(lvl)
	}

	store, err := kvstore.Open(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("opening store")
	}
	defer store.Close()

	decls, err := buildDecls(store, tables.specs)
	if err != nil {
		log.WithError(err).Fatal("parsing -table declarations")
	}

	args, err := parseArgs(*argsText)
	if err != nil {
		log.WithError(err).Fatal("parsing -args")
	}

	reg, err := launch.NewRegistry(cfg.ToPlannerConfig(), 0)
	if err != nil {
		log.WithError(err).Fatal("building query registry")
	}

	plan, err := reg.Compile(rowTypeKey(decls), *specText, *queryText, decls)
	if err != nil {
		log.WithError(err).Fatal("compiling query")
	}

	txn, err := store.Begin(false)
	if err != nil {
		log.WithError(err).Fatal("opening transaction")
	}
	defer txn.Rollback()

	ctx := kv.NewContext(context.Background(), kv.WithLogger(log))

	if *explain {
		node, err := plan.Describe(ctx, txn)
		if err != nil {
			log.WithError(err).Fatal("describing plan")
		}
		fmt.Println(node.String())
		return
	}

	session, err := plan.Launch(ctx, txn, args)
	if err != nil {
		log.WithError(err).Fatal("launching query")
	}
	defer session.Close()

	jumpIn := false
	for {
		row, err := session.Step(jumpIn)
		if err != nil {
			log.WithError(err).Fatal("stepping query")
		}
		if row == nil {
			return
		}
		fmt.Println(formatRow(row))
		jumpIn = true
	}
}

// buildDecls parses each -table spec of the form
// "declName@bucket=col:type[:key],col:type,...", opens that bucket against
// store, and returns the resulting joinspec.ColumnDecl list in the order
// given on the command line (the order the join spec's identifiers refer
// to them by name, not position).
func buildDecls(store *kvstore.Store, specs []string) ([]joinspec.ColumnDecl, error) {
	decls := make([]joinspec.ColumnDecl, 0, len(specs))
	for _, spec := range specs {
		header, colsPart, ok := cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("joinsh: -table %q: missing '='", spec)
		}
		declName, bucket, ok := cut(header, "@")
		if !ok {
			return nil, fmt.Errorf("joinsh: -table %q: missing '@'", spec)
		}

		cols, err := parseColumns(colsPart)
		if err != nil {
			return nil, fmt.Errorf("joinsh: -table %q: %w", spec, err)
		}

		rt := kvstore.NewStaticRowType(declName, cols)
		table, err := store.Table(bucket, rt)
		if err != nil {
			return nil, err
		}
		decls = append(decls, joinspec.ColumnDecl{Name: declName, Declared: rt, Table: table})
	}
	return decls, nil
}

func parseColumns(text string) ([]kv.ColumnInfo, error) {
	var cols []kv.ColumnInfo
	for _, part := range strings.Split(text, ",") {
		fields := strings.Split(part, ":")
		if len(fields) < 2 {
			return nil, fmt.Errorf("column %q: expected name:type[:key]", part)
		}
		vt, ok := parseValueType(fields[1])
		if !ok {
			return nil, fmt.Errorf("column %q: unknown type %q", part, fields[1])
		}
		info := kv.ColumnInfo{Name: fields[0], Type: vt, Nullable: true}
		if len(fields) >= 3 && fields[2] == "key" {
			info.KeyRole = kv.PrimaryKeyColumn
			info.Nullable = false
		}
		cols = append(cols, info)
	}
	return cols, nil
}

func parseValueType(s string) (kv.ValueType, bool) {
	switch s {
	case "int8":
		return kv.TypeInt8, true
	case "int16":
		return kv.TypeInt16, true
	case "int32":
		return kv.TypeInt32, true
	case "int64":
		return kv.TypeInt64, true
	case "uint8":
		return kv.TypeUint8, true
	case "uint16":
		return kv.TypeUint16, true
	case "uint32":
		return kv.TypeUint32, true
	case "uint64":
		return kv.TypeUint64, true
	case "float32":
		return kv.TypeFloat32, true
	case "float64":
		return kv.TypeFloat64, true
	case "string":
		return kv.TypeString, true
	case "bool":
		return kv.TypeBool, true
	case "bytes":
		return kv.TypeBytes, true
	default:
		return kv.TypeUnknown, false
	}
}

func parseArgs(text string) ([]interface{}, error) {
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	args := make([]interface{}, len(parts))
	for i, p := range parts {
		args[i] = inferArg(p)
	}
	return args, nil
}

// inferArg guesses a bind argument's type from its textual form: an
// integer, a float, or else a plain string. CompareValues's cast-based
// widening handles the rest at evaluation time.
func inferArg(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func rowTypeKey(decls []joinspec.ColumnDecl) string {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func formatRow(row kv.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\t")
}

func cut(s, sep string) (before, after string, found bool) {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
