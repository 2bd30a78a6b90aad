package check

import (
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// binaryOpType resolves the result type of applying op to two already-typed
// operands. Equality operators accept any two operands of the identical
// (hash-consed) type; every other operator is defined only over Venom's
// primitive builtins, per the operator table of spec §4.4.
func binaryOpType(reg *typesystem.Registry, op string, lt, rt *typesystem.InstantiatedType) (*typesystem.InstantiatedType, error) {
	boolT := reg.MustInstantiate(reg.Lookup(typesystem.BoolName))

	switch op {
	case "==", "!=":
		if !lt.Equals(rt) {
			return nil, diagnostic.TypeErr(op, "cannot compare %s and %s", lt, rt)
		}
		return boolT, nil
	case "and", "or":
		if !isBuiltin(lt, typesystem.BoolName) || !isBuiltin(rt, typesystem.BoolName) {
			return nil, diagnostic.TypeErr(op, "operands must be Bool, got %s and %s", lt, rt)
		}
		return boolT, nil
	case "<", "<=", ">", ">=":
		if same, t := sameNumeric(reg, lt, rt); same {
			_ = t
			return boolT, nil
		}
		return nil, diagnostic.TypeErr(op, "cannot compare %s and %s", lt, rt)
	case "+":
		if isBuiltin(lt, typesystem.StringName) && isBuiltin(rt, typesystem.StringName) {
			return reg.MustInstantiate(reg.Lookup(typesystem.StringName)), nil
		}
		if same, t := sameNumeric(reg, lt, rt); same {
			return t, nil
		}
		return nil, diagnostic.TypeErr(op, "cannot add %s and %s", lt, rt)
	case "-", "*", "/", "%":
		if same, t := sameNumeric(reg, lt, rt); same {
			return t, nil
		}
		return nil, diagnostic.TypeErr(op, "operands must both be Int or both Float, got %s and %s", lt, rt)
	default:
		return nil, diagnostic.Semantic(op, "unknown operator")
	}
}

// unaryOpType resolves the result type of applying a unary operator.
func unaryOpType(reg *typesystem.Registry, op string, t *typesystem.InstantiatedType) (*typesystem.InstantiatedType, error) {
	switch op {
	case "not":
		if !isBuiltin(t, typesystem.BoolName) {
			return nil, diagnostic.TypeErr(op, "operand must be Bool, got %s", t)
		}
		return reg.MustInstantiate(reg.Lookup(typesystem.BoolName)), nil
	case "-":
		if isBuiltin(t, typesystem.IntName) || isBuiltin(t, typesystem.FloatName) {
			return t, nil
		}
		return nil, diagnostic.TypeErr(op, "operand must be Int or Float, got %s", t)
	default:
		return nil, diagnostic.Semantic(op, "unknown unary operator")
	}
}

func isBuiltin(t *typesystem.InstantiatedType, name string) bool {
	return t != nil && t.Type.Name == name && t.Type.Kind == typesystem.KindBuiltin
}

// sameNumeric reports whether lt and rt are both Int or both Float, and if
// so returns that shared type (Venom has no implicit Int/Float coercion).
func sameNumeric(reg *typesystem.Registry, lt, rt *typesystem.InstantiatedType) (bool, *typesystem.InstantiatedType) {
	if isBuiltin(lt, typesystem.IntName) && isBuiltin(rt, typesystem.IntName) {
		return true, lt
	}
	if isBuiltin(lt, typesystem.FloatName) && isBuiltin(rt, typesystem.FloatName) {
		return true, lt
	}
	return false, nil
}
