package joinspec

// TrySplitFullJoin decomposes a JoinOp of full type (or the special root
// case where n is already a bare JoinOp with a full type rather than a
// FullJoin wrapper) into the disjoint union of two simpler plans:
//
//	A >:< B  splits into  { A >: B, A < B }   (left-outer, right-anti)
//	A ><  B  splits into  { A > B,  A < B }   (left-anti, right-anti)
//
// The planner applies it to every FullJoin source when finalizing that
// source's two sub-plans, wherever the source sits in the tree.
func TrySplitFullJoin(n Node) (first, second Node, ok bool) {
	var op *JoinOp
	switch v := n.(type) {
	case *FullJoin:
		op = v.Op
	case *JoinOp:
		if !v.Type.IsFull() {
			return nil, nil, false
		}
		op = v
	default:
		return nil, nil, false
	}

	switch op.Type {
	case FullOuter:
		return &JoinOp{Left: op.Left, Right: op.Right, Type: LeftOuter},
			&JoinOp{Left: op.Left, Right: op.Right, Type: RightAnti},
			true
	case FullAnti:
		return &JoinOp{Left: op.Left, Right: op.Right, Type: LeftAnti},
			&JoinOp{Left: op.Left, Right: op.Right, Type: RightAnti},
			true
	default:
		return nil, nil, false
	}
}

// HasFullJoin reports whether n contains any FullJoin node.
func HasFullJoin(n Node) bool {
	found := false
	_, _ = Transform(n, func(n Node) (Node, error) {
		if _, ok := n.(*FullJoin); ok {
			found = true
		}
		return n, nil
	})
	return found
}
