// Package cpptree builds block-structured, content-addressed parse trees from
// C++ source text, resolves class and function symbols over them, and
// extracts shadow trees of the nodes relevant to crucial classes.
package cpptree
