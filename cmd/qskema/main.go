package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"

	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	"github.com/reoring/qskema/yamlschema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "decode":
		decodeCmd(os.Args[2:])
	case "jsonschema":
		jsonSchemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "qskema CLI\n\nUsage:\n  qskema decode -schema schema.yaml -q \"a=1&b=x\" [-presence] [-lang en|ja]\n  qskema decode -schema schema.yaml -f query.txt\n  qskema jsonschema -schema schema.yaml\n\nNotes:\n  - With -f \"-\" the query string is read from stdin.")
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var schemaPath string
	var query string
	var queryFile string
	var presence bool
	var lang string
	fs.StringVar(&schemaPath, "schema", "", "path to a YAML schema file")
	fs.StringVar(&query, "q", "", "query string to decode")
	fs.StringVar(&queryFile, "f", "", "file containing the query string (\"-\" for stdin)")
	fs.BoolVar(&presence, "presence", false, "include presence metadata in the output")
	fs.StringVar(&lang, "lang", "", "message language for issues (en, ja)")
	_ = fs.Parse(args)
	if schemaPath == "" || (query == "" && queryFile == "") {
		fs.Usage()
		os.Exit(2)
	}
	if lang != "" {
		i18n.SetLanguage(lang)
	}

	s := loadSchema(schemaPath)
	if queryFile != "" {
		query = readQueryFile(queryFile)
	}

	var issues []qskema.Issue
	opt := qskema.DecodeOpt{
		Presence:  qskema.PresenceOpt{Collect: presence},
		IssueSink: func(is qskema.Issue) { issues = append(issues, is) },
	}
	dm, err := qskema.DecodeWithMeta(context.Background(), s, qskema.Query(query), opt)
	if err != nil {
		if iss, ok := qskema.AsIssues(err); ok {
			writeJSON(map[string]any{"issues": iss})
			os.Exit(1)
		}
		fatalf("decode: %v", err)
	}

	out := map[string]any{"value": dm.Value}
	if len(issues) > 0 {
		out["issues"] = issues
	}
	if presence {
		out["presence"] = dm.Presence
	}
	writeJSON(out)
}

func jsonSchemaCmd(args []string) {
	fs := flag.NewFlagSet("jsonschema", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "path to a YAML schema file")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	s := loadSchema(schemaPath)
	out, err := qskema.JSONSchemaOf(s)
	if err != nil {
		fatalf("jsonschema: %v", err)
	}
	writeJSON(out)
}

func loadSchema(path string) qskema.Schema {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	s, diag, err := yamlschema.ImportYAML(data, yamlschema.Options{})
	if err != nil {
		fatalf("importing schema: %v", err)
	}
	for _, w := range diag.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return s
}

func readQueryFile(path string) string {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fatalf("reading query: %v", err)
	}
	// trailing newline from editors and pipes is not part of the query
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}
	return string(data)
}

func writeJSON(v any) {
	enc := j.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encoding output: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
