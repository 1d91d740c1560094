package cursor

import "github.com/dshills/stormcore/internal/engine/sso"

// CopyChain is one kill-ring entry. Nodes are immutable once linked;
// chains share their tails.
type CopyChain struct {
	Value    sso.String
	Previous *CopyChain
}

// PushCopy returns a new head holding value with head as its previous
// entry.
func PushCopy(head *CopyChain, value sso.String) *CopyChain {
	return &CopyChain{Value: value, Previous: head}
}

// Len returns the number of entries reachable from c.
func (c *CopyChain) Len() int {
	n := 0
	for ; c != nil; c = c.Previous {
		n++
	}
	return n
}

// Strings returns the entry values from newest to oldest.
func (c *CopyChain) Strings() []string {
	var out []string
	for ; c != nil; c = c.Previous {
		out = append(out, c.Value.String())
	}
	return out
}
