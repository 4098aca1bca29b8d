// Command exportgen emits the static export-table Go file for a frozen
// contract image from a TOML manifest. The output binds every exported
// symbol to its in-module function name; completeness is then enforced at
// dispatcher construction, so a drifted manifest fails before any call is
// accepted.
//
// Usage:
//
//	exportgen -manifest contract/exports.toml -out contract/exports.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
)

type manifest struct {
	Package string        `toml:"package"`
	Image   string        `toml:"image"`
	Export  []exportEntry `toml:"export"`
}

type exportEntry struct {
	Symbol   string `toml:"symbol"`
	Function string `toml:"function"`
}

const fileTemplate = `// Code generated by exportgen from {{.ManifestName}}. DO NOT EDIT.

package {{.Package}}

import "github.com/frostvm/bridge/dispatch"

// Export maps an exported symbol to its in-module function name.
type Export struct {
	Symbol   string
	Function string
}

// Exports is the static export table for image {{printf "%q" .Image}}.
var Exports = []Export{
{{- range .Export}}
	{Symbol: {{printf "%q" .Symbol}}, Function: {{printf "%q" .Function}}},
{{- end}}
}

// Bind registers every export into t against ImageName.
func Bind(t *dispatch.Table) error {
	for _, e := range Exports {
		if err := t.Bind(e.Symbol, ImageName, e.Function); err != nil {
			return err
		}
	}
	return nil
}
`

func main() {
	var (
		manifestPath = flag.String("manifest", "", "Path to the export manifest (TOML)")
		outPath      = flag.String("out", "", "Path of the generated Go file")
	)
	flag.Parse()

	if *manifestPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: exportgen -manifest <exports.toml> -out <exports.go>")
		os.Exit(1)
	}

	if err := run(*manifestPath, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "exportgen: %v\n", err)
		os.Exit(1)
	}
}

func run(manifestPath, outPath string) error {
	var m manifest
	if _, err := toml.DecodeFile(manifestPath, &m); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	if err := validate(&m); err != nil {
		return fmt.Errorf("manifest %s: %w", manifestPath, err)
	}

	tmpl, err := template.New("exports").Parse(fileTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		manifest
		ManifestName string
	}{m, filepath.Base(manifestPath)})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}

	return os.WriteFile(outPath, src, 0o644)
}

func validate(m *manifest) error {
	if m.Package == "" {
		return fmt.Errorf("package is required")
	}
	if m.Image == "" {
		return fmt.Errorf("image is required")
	}
	if len(m.Export) == 0 {
		return fmt.Errorf("at least one export is required")
	}

	seen := make(map[string]bool, len(m.Export))
	for i, e := range m.Export {
		if e.Symbol == "" {
			return fmt.Errorf("export %d has no symbol", i)
		}
		if e.Function == "" {
			return fmt.Errorf("export %q has no function", e.Symbol)
		}
		if seen[e.Symbol] {
			return fmt.Errorf("export %q listed twice", e.Symbol)
		}
		seen[e.Symbol] = true
	}
	return nil
}
