package cpptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", " \t ", nil},
		{"identifiers", "int value_1 = 42;", []string{"int", "value_1", "=", "42", ";"}},
		{"scope operator", "std::string s;", []string{"std", "::", "string", "s", ";"}},
		{"arrow", "p->x = 1;", []string{"p", "->", "x", "=", "1", ";"}},
		{"comparisons", "a==b!=c<=d>=e", []string{"a", "==", "b", "!=", "c", "<=", "d", ">=", "e"}},
		{"single chars", "f(a,b){}", []string{"f", "(", "a", ",", "b", ")", "{", "}"}},
		{"template brackets", "make_unique<Widget>()", []string{"make_unique", "<", "Widget", ">", "(", ")"}},
		{"include", `#include "widget.h"`, []string{"#", "include", `"`, "widget", ".", "h", `"`}},
		{"lone colon", "public:", []string{"public", ":"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"Widget", "make", "int", "a"}, SplitWords("Widget* make(int a)"))
	assert.Nil(t, SplitWords("(){};"))
	assert.Equal(t, []string{"x_1"}, SplitWords("x_1"))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\r\nb\r\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestStripComments(t *testing.T) {
	src := "int a; // trailing\n/* block\nspans */ int b;\nconst char* s = \"// not a comment\";\nchar c = '/';"
	got := StripComments(src)

	assert.Equal(t, 4, len(SplitLines(got))-1, "newlines must be preserved")
	assert.Contains(t, got, "int a; \n")
	assert.Contains(t, got, "int b;")
	assert.Contains(t, got, `"// not a comment"`)
	assert.Contains(t, got, "'/'")
	assert.NotContains(t, got, "trailing")
	assert.NotContains(t, got, "spans")
}

func TestStripComments_DigitSeparators(t *testing.T) {
	src := "int n = 1'000; // class GhostFactory { };\nlong m = 0xFF'FF'FF; /* gone */\nchar c = u8'a'; // x\n"
	got := StripComments(src)

	assert.Contains(t, got, "int n = 1'000; \n")
	assert.Contains(t, got, "long m = 0xFF'FF'FF;  \n")
	assert.Contains(t, got, "char c = u8'a'; \n")
	assert.NotContains(t, got, "GhostFactory")
	assert.NotContains(t, got, "gone")
}

func TestStripComments_DigitSeparatorDoesNotHideClasses(t *testing.T) {
	s, _ := build(t, "factory", SourceFile{Path: "n.cpp", Content: "int n = 1'000; // class GhostFactory { };\nclass Real { };\n"})
	classes := s.ClassSymbols()
	require.Len(t, classes, 1)
	assert.Equal(t, "Real", classes[0].Name)
	_, crucial := s.IsCrucial("GhostFactory")
	assert.False(t, crucial)
}

func TestClassifyStatement(t *testing.T) {
	tests := []struct {
		line string
		want NodeKind
	}{
		{"if ( x )", KindConditional},
		{"else", KindConditional},
		{"while ( x )", KindLoop},
		{"return new Widget ( )", KindReturn},
		{"class Foo", KindClassDecl},
		{"struct Bar", KindStructDecl},
		{"namespace app", KindNamespaceDecl},
		{"this -> x = 1", KindMemberAssignment},
		{"x = 1", KindAssignmentOrDecl},
		{"int x", KindAssignmentOrDecl},
		{"std :: string name", KindAssignmentOrDecl},
		{"Widget w", KindStatement},
		{"foo ( )", KindStatement},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStatement(Tokenize(tt.line)))
		})
	}
	assert.Equal(t, KindStatement, classifyStatement(nil))
}
