package joinspec

import "github.com/kvrowdb/joinengine/kv"

// IsEmpty answers the semantic "would this join produce zero rows?"
// question using each table's fast IsEmpty() check (§4.B), without opening
// any scanner. ToLeftJoin should be applied before calling this, since the
// rules below are only given for left-variant join types; a FullJoin's
// IsEmpty uses both sub-columns directly rather than invoking the split.
func IsEmpty(ctx *kv.Context, txn kv.Transaction, n Node) (bool, error) {
	switch v := n.(type) {
	case *Column:
		return v.Table.IsEmpty(ctx, txn)
	case *InnerJoins:
		for _, c := range v.Children {
			empty, err := IsEmpty(ctx, txn, c)
			if err != nil {
				return false, err
			}
			if empty {
				return true, nil
			}
		}
		return false, nil
	case *FullJoin:
		left, err := IsEmpty(ctx, txn, v.Op.Left)
		if err != nil {
			return false, err
		}
		right, err := IsEmpty(ctx, txn, v.Op.Right)
		if err != nil {
			return false, err
		}
		switch v.Op.Type {
		case FullOuter:
			return left && right, nil
		case FullAnti:
			return (left && right) || (!left && !right), nil
		default:
			return false, kv.ErrUnsupportedJoinType.New(v.Op.Type)
		}
	case *JoinOp:
		left, err := IsEmpty(ctx, txn, v.Left)
		if err != nil {
			return false, err
		}
		right, err := IsEmpty(ctx, txn, v.Right)
		if err != nil {
			return false, err
		}
		switch v.Type {
		case Inner, Straight:
			return left || right, nil
		case LeftOuter:
			return left, nil
		case RightOuter:
			return right, nil
		case LeftAnti:
			return left || !right, nil
		case RightAnti:
			return right || !left, nil
		case FullOuter:
			return left && right, nil
		case FullAnti:
			return (left && right) || (!left && !right), nil
		default:
			return false, kv.ErrUnsupportedJoinType.New(v.Type)
		}
	default:
		return false, kv.ErrUnsupportedJoinType.New(n)
	}
}
