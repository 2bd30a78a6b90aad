package ast

// Walk visits n and every descendant reachable through ChildCount/Child,
// depth-first, calling visit on each non-nil node. It is the uniform
// traversal spec §4.3 asks every node to support by exposing a fixed
// child arity. internal/lift's capture-set computation and
// internal/debugdump's AST dump do not call it; each uses its own
// per-kind walker.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), visit)
	}
}
