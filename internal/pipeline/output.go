package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/cppshadow/internal/export"
)

const (
	codeDir        = "generated_code"
	htmlDir        = "generated_html"
	reportFile     = "report.json"
	fallbackTarget = "unknown_target"
)

// OutputPaths lists every file written by WriteOutputs.
type OutputPaths struct {
	BaseCode        string `json:"base_code"`
	TargetCode      string `json:"target_code"`
	BaseHTML        string `json:"base_html"`
	TargetHTML      string `json:"target_html"`
	MainTreeHTML    string `json:"main_tree_html,omitempty"`
	ShadowTreeHTML  string `json:"shadow_tree_html,omitempty"`
	CreationalHTML  string `json:"creational_html,omitempty"`
	BehaviouralHTML string `json:"behavioural_html,omitempty"`
	PatternHTML     string `json:"pattern_html,omitempty"`
	Report          string `json:"report,omitempty"`
}

// All returns the non-empty paths in a fixed order.
func (o OutputPaths) All() []string {
	var out []string
	for _, p := range []string{
		o.BaseCode, o.TargetCode, o.BaseHTML, o.TargetHTML,
		o.MainTreeHTML, o.ShadowTreeHTML, o.CreationalHTML, o.BehaviouralHTML, o.PatternHTML,
		o.Report,
	} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sanitize keeps letters, digits, '_' and '-' of a pattern name for use in a
// file name. Spaces and slashes become '_'; anything else is dropped.
func Sanitize(pattern string) string {
	out := make([]byte, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			out = append(out, c)
		case c == ' ', c == '/':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return fallbackTarget
	}
	return string(out)
}

// Layout returns where WriteOutputs places each file for a run with these
// patterns. The files need not exist.
func Layout(dir, sourcePattern, targetPattern string) OutputPaths {
	safe := Sanitize(targetPattern)
	html := filepath.Join(dir, htmlDir)
	return OutputPaths{
		BaseCode:        filepath.Join(dir, codeDir, "generated_base_code.cpp"),
		TargetCode:      filepath.Join(dir, codeDir, "generated_target_code_"+safe+".cpp"),
		BaseHTML:        filepath.Join(html, "generated_base_code.html"),
		TargetHTML:      filepath.Join(html, "generated_target_code_"+safe+".html"),
		MainTreeHTML:    filepath.Join(html, "parse_tree.html"),
		ShadowTreeHTML:  filepath.Join(html, "shadow_tree.html"),
		CreationalHTML:  filepath.Join(html, "creational_parse_tree.html"),
		BehaviouralHTML: filepath.Join(html, "behavioural_broken_ast.html"),
		PatternHTML:     filepath.Join(html, "pattern_tree_"+Sanitize(sourcePattern)+".html"),
		Report:          filepath.Join(dir, reportFile),
	}
}

// WriteCode writes the base and target sources under dir/generated_code and
// their HTML pages under dir/generated_html.
func WriteCode(dir, base, target, targetPattern string) (OutputPaths, error) {
	full := Layout(dir, "", targetPattern)
	paths := OutputPaths{
		BaseCode:   full.BaseCode,
		TargetCode: full.TargetCode,
		BaseHTML:   full.BaseHTML,
		TargetHTML: full.TargetHTML,
	}
	for _, sub := range []string{codeDir, htmlDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
		}
	}

	files := []struct{ path, content string }{
		{paths.BaseCode, base},
		{paths.TargetCode, target},
		{paths.BaseHTML, export.CodeHTML("Generated Base Code", base)},
		{paths.TargetHTML, export.CodeHTML("Generated Target Code", target)},
	}
	for _, f := range files {
		if err := writeFile(f.path, f.content); err != nil {
			return OutputPaths{}, err
		}
	}
	return paths, nil
}

// WriteOutputs writes the generated code, one HTML page per tree and the
// JSON report of art under dir.
func WriteOutputs(dir string, art *Artifacts) (OutputPaths, error) {
	paths, err := WriteCode(dir, art.BaseCode, art.TargetCode, art.Report.TargetPattern)
	if err != nil {
		return OutputPaths{}, err
	}

	full := Layout(dir, art.Report.SourcePattern, art.Report.TargetPattern)
	paths.MainTreeHTML = full.MainTreeHTML
	paths.ShadowTreeHTML = full.ShadowTreeHTML
	paths.CreationalHTML = full.CreationalHTML
	paths.BehaviouralHTML = full.BehaviouralHTML
	paths.PatternHTML = full.PatternHTML

	pages := []struct{ path, content string }{
		{paths.MainTreeHTML, export.HTML(art.Main, "C++ Parse Tree", "No source files.")},
		{paths.ShadowTreeHTML, export.HTML(art.Shadow, "Shadow AST", "No crucial classes selected for this pattern.")},
		{paths.CreationalHTML, export.HTML(art.Patterns.Creational, "Creational Broken Tree",
			"No creational (factory/singleton) pattern found in this source.")},
		{paths.BehaviouralHTML, export.HTML(art.Patterns.Behavioural, "Behavioural Broken AST", "No function symbols found.")},
		{paths.PatternHTML, export.HTML(art.PatternTree, "Pattern Tree: "+art.Report.SourcePattern,
			"No instance of this pattern found.")},
	}
	for _, pg := range pages {
		if err := writeFile(pg.path, pg.content); err != nil {
			return OutputPaths{}, err
		}
	}

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, art.Report); err != nil {
		return OutputPaths{}, err
	}
	paths.Report = full.Report
	if err := writeFile(paths.Report, buf.String()); err != nil {
		return OutputPaths{}, err
	}
	return paths, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
