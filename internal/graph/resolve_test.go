package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var knownFiles = []string{
	"include/widget.h",
	"include/factory.h",
	"src/main.cpp",
	"src/util/log.h",
	"lib/a/config.h",
	"lib/b/config.h",
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(knownFiles)

	tests := []struct {
		name      string
		specifier string
		from      string
		want      string
		ok        bool
	}{
		{"relative to includer", "widget.h", "include/factory.h", "include/widget.h", true},
		{"relative parent", "../include/factory.h", "src/main.cpp", "include/factory.h", true},
		{"repo path", "src/util/log.h", "include/widget.h", "src/util/log.h", true},
		{"unique suffix", "util/log.h", "include/widget.h", "src/util/log.h", true},
		{"unique basename", "factory.h", "src/main.cpp", "include/factory.h", true},
		{"ambiguous basename", "config.h", "src/main.cpp", "", false},
		{"ambiguous resolved by directory", "config.h", "lib/b/impl.cpp", "lib/b/config.h", true},
		{"system header", "vector", "src/main.cpp", "", false},
		{"empty", " ", "src/main.cpp", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.specifier, tt.from)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver(knownFiles)
	edges := []Edge{
		{SourceID: "src/main.cpp", TargetID: "factory.h", Kind: EdgeKindIncludes},
		{SourceID: "src/main.cpp", TargetID: "iostream", Kind: EdgeKindIncludes},
		{SourceID: "include/widget.h", TargetID: "widget.h", Kind: EdgeKindIncludes},
		{SourceID: "src/main.cpp", TargetID: "src/main.cpp:render", Kind: EdgeKindDefines},
	}

	resolved, unresolved := r.ResolveAll(edges)
	assert.Equal(t, []Edge{
		{SourceID: "src/main.cpp", TargetID: "include/factory.h", Kind: EdgeKindIncludes},
		{SourceID: "src/main.cpp", TargetID: "src/main.cpp:render", Kind: EdgeKindDefines},
	}, resolved)
	assert.Equal(t, []string{"iostream", "widget.h"}, unresolved, "self-includes are dropped")
}
