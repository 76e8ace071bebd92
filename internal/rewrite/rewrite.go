// Package rewrite produces the base and target source texts written next to
// the analysis report. The only supported transformation turns factory
// classes into singletons.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/patterns"
)

const (
	baseHeader    = "// Generated base code\n"
	targetHeader  = "// Generated target code\n"
	accessorName  = "instance"
	singletonVar  = "singleton_instance"
	publicLabel   = "public:"
	memoryPath    = "<memory>"
	fileMarkerFmt = "\n// === FILE: %s ===\n"
)

// Join concatenates files into one text, each preceded by a file marker.
func Join(files []cpptree.SourceFile) string {
	var b strings.Builder
	for i, f := range files {
		fmt.Fprintf(&b, fileMarkerFmt, f.Path)
		b.WriteString(f.Content)
		if i+1 < len(files) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Base returns source under the base-code header.
func Base(source string) string {
	return baseHeader + source + "\n"
}

// Target returns source rewritten for the target pattern, under a header
// naming both patterns. Pattern pairs without a rewrite pass the source
// through unchanged.
func Target(source, sourcePattern, targetPattern string) string {
	transformed := source
	if strings.EqualFold(sourcePattern, "factory") && strings.EqualFold(targetPattern, "singleton") {
		transformed = FactoryToSingleton(source)
	}

	var b strings.Builder
	b.WriteString(targetHeader)
	b.WriteString("// source_pattern: " + sourcePattern + "\n")
	b.WriteString("// target_pattern: " + targetPattern + "\n")
	b.WriteString(transformed)
	b.WriteByte('\n')
	return b.String()
}

// FactoryToSingleton gives every detected factory class a static accessor
// and replaces its local instantiations with calls to it.
func FactoryToSingleton(source string) string {
	out := source
	for _, name := range factoryClasses(source) {
		out = injectAccessor(out, name)
		out = rewriteInstantiations(out, name)
	}
	return out
}

func factoryClasses(source string) []string {
	s := cpptree.NewSession()
	bundle := s.Build([]cpptree.SourceFile{{Path: memoryPath, Content: source}}, cpptree.BuildContext{SourcePattern: "factory"})
	tree := patterns.Factory(s, bundle.Main)

	seen := make(map[string]bool)
	var names []string
	for _, cls := range tree.Children {
		if cls.Kind != patterns.KindClass || seen[cls.Value] {
			continue
		}
		seen[cls.Value] = true
		names = append(names, cls.Value)
	}
	return names
}

func injectAccessor(source, class string) string {
	decl := regexp.MustCompile(`\b(?:class|struct)\s+` + regexp.QuoteMeta(class) + `\b`)
	loc := decl.FindStringIndex(source)
	if loc == nil {
		return source
	}

	open := strings.IndexByte(source[loc[1]:], '{')
	if open < 0 {
		return source
	}
	open += loc[1]
	closing := matchingBrace(source, open)
	if closing < 0 {
		return source
	}

	body := source[open+1 : closing]
	if strings.Contains(body, "static "+class+"& "+accessorName+"(") {
		return source
	}

	accessor := "\n    static " + class + "& " + accessorName + "() {\n" +
		"        static " + class + " " + singletonVar + ";\n" +
		"        return " + singletonVar + ";\n" +
		"    }\n"

	if i := strings.Index(body, publicLabel); i >= 0 {
		at := i + len(publicLabel)
		body = body[:at] + accessor + body[at:]
	} else {
		body = "\n" + publicLabel + accessor + body
	}
	return source[:open+1] + body + source[closing:]
}

func matchingBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

const identifier = `([A-Za-z_][A-Za-z0-9_]*)`

func rewriteInstantiations(source, class string) string {
	c := regexp.QuoteMeta(class)
	replacement := "auto& ${1} = " + class + "::" + accessorName + "();"

	pointerDecl := regexp.MustCompile(`\b` + c + `\s*\*\s*` + identifier + `\s*=\s*new\s+` + c + `\s*\([^;{}]*\)\s*;`)
	simpleDecl := regexp.MustCompile(`\b` + c + `\s+` + identifier + `\s*;`)
	ctorDecl := regexp.MustCompile(`\b` + c + `\s+` + identifier + `\s*\([^;{}]*\)\s*;`)

	out := pointerDecl.ReplaceAllString(source, replacement)
	out = simpleDecl.ReplaceAllString(out, replacement)
	out = ctorDecl.ReplaceAllString(out, replacement)

	// The accessor's own static local matches simpleDecl; put it back.
	selfRef := regexp.MustCompile(`static\s+auto&\s+` + singletonVar + `\s*=\s*` + c + `\s*::\s*` + accessorName + `\s*\(\s*\)\s*;`)
	return selfRef.ReplaceAllString(out, "static "+class+" "+singletonVar+";")
}
