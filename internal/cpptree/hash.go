package cpptree

import (
	"hash/fnv"
	"strconv"
)

// HashFunc maps a string to a 64-bit identity. Every hash in a session
// (contextual, name, scoped, usage) is derived through one HashFunc so that a
// test can substitute a deliberately colliding function.
type HashFunc func(string) uint64

// FNV64a is the default HashFunc (FNV-1a, 64 bit).
func FNV64a(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// rootHash is the identity of the TranslationUnit node.
func (s *Session) rootHash() uint64 {
	return s.hash(string(KindTranslationUnit) + "|Root|main")
}

// combine folds a token into a running hash.
func (s *Session) combine(seed uint64, token string) uint64 {
	return s.hash(strconv.FormatUint(seed, 10) + "|" + token)
}

// childHash derives a node's contextual hash from its parent and position.
func (s *Session) childHash(parent uint64, kind NodeKind, value string, index int) uint64 {
	return s.hash(strconv.FormatUint(parent, 10) + "|" + string(kind) + "|" + value + "|" + strconv.Itoa(index))
}

// rehash restamps n and its whole subtree under a new parent hash and index.
func (s *Session) rehash(n *Node, parent uint64, index int) {
	n.Hash = s.childHash(parent, n.Kind, n.Value, index)
	for i := range n.Children {
		s.rehash(&n.Children[i], n.Hash, i)
	}
}

func addUnique(hashes *[]uint64, h uint64) {
	for _, existing := range *hashes {
		if existing == h {
			return
		}
	}
	*hashes = append(*hashes, h)
}

// FormatHashes renders hashes as a comma separated decimal list.
func FormatHashes(hashes []uint64) string {
	buf := make([]byte, 0, len(hashes)*20)
	for i, h := range hashes {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, h, 10)
	}
	return string(buf)
}
