package lexer

import "github.com/jacob-carlborg/ddc/internal/token"

// overflowNode is one link in the doubly-linked buffer of tokens scanned
// ahead of the parser's cursor but not yet consumed, backing Peek(k) for
// k beyond the single current token (spec.md §3 "Token" data model note).
type overflowNode struct {
	tok        token.Token
	prev, next *overflowNode
}

// overflow is a small doubly-linked queue: Push appends at the tail,
// PopFront removes and returns the head, At(k) walks k nodes from the head
// without mutating the queue (used by Peek).
type overflow struct {
	head, tail *overflowNode
	length     int
}

func (o *overflow) push(t token.Token) {
	n := &overflowNode{tok: t}
	if o.tail == nil {
		o.head, o.tail = n, n
	} else {
		n.prev = o.tail
		o.tail.next = n
		o.tail = n
	}

	o.length++
}

func (o *overflow) popFront() (token.Token, bool) {
	if o.head == nil {
		return token.Token{}, false
	}

	n := o.head
	o.head = n.next

	if o.head != nil {
		o.head.prev = nil
	} else {
		o.tail = nil
	}

	o.length--

	return n.tok, true
}

// at returns the (0-based) k-th buffered token without removing it.
func (o *overflow) at(k int) (token.Token, bool) {
	if k < 0 || k >= o.length {
		return token.Token{}, false
	}

	n := o.head
	for i := 0; i < k; i++ {
		n = n.next
	}

	return n.tok, true
}
