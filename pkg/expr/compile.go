package expr

import (
	"fmt"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
)

var opFor = map[Kind]particle.Op{
	KindSin:          particle.OpSin,
	KindCos:          particle.OpCos,
	KindNormalize:    particle.OpNormalize,
	KindPack4x8Unorm: particle.OpPack4x8Unorm,
	KindAdd:          particle.OpAdd,
	KindSub:          particle.OpSub,
	KindMul:          particle.OpMul,
	KindDistance:     particle.OpDistance,
	KindUniform:      particle.OpUniform,
	KindMakeVec3:     particle.OpVec3,
	KindMakeVec4:     particle.OpVec4,
}

// Compile appends n to m in post-order and returns the handle of its root.
//
// Compile never fails. A placeholder, an unknown kind or a missing operator
// child is lowered to the literal 0.0 and reported to sink as a placeholder
// hazard. sink may be nil.
func Compile(n Node, m *particle.Module, sink diag.Sink) particle.ExprHandle {
	return compile(n, m, sink, "")
}

func compile(n Node, m *particle.Module, sink diag.Sink, path string) particle.ExprHandle {
	switch n.Kind {
	case KindFloat:
		return m.Lit(particle.FloatValue(n.Float))
	case KindUint:
		return m.Lit(particle.UintValue(n.Uint))
	case KindVec3:
		return m.Lit(particle.Vec3Value(particle.Vec3{n.Vec[0], n.Vec[1], n.Vec[2]}))
	case KindVec4:
		return m.Lit(particle.Vec4Value(n.Vec))
	case KindRand:
		return m.Rand(n.RandType)
	case KindTime:
		return m.Time()
	case KindAge:
		return m.Attr(particle.AttrAge)
	case KindAttr:
		return m.Attr(n.Attr)
	case KindParentAttr:
		return m.ParentAttr(n.Attr)
	case KindPlaceholder:
		diag.Report(sink, diag.Hazard{Kind: diag.KindPlaceholder, Path: path, Detail: "unset expression compiled as 0.0"})
		return m.Lit(particle.FloatValue(0))
	}

	arity := n.Kind.Arity()
	if arity == 0 {
		diag.Report(sink, diag.Hazard{Kind: diag.KindPlaceholder, Path: path, Detail: fmt.Sprintf("unknown expression kind %q compiled as 0.0", n.Kind)})
		return m.Lit(particle.FloatValue(0))
	}

	args := make([]particle.ExprHandle, arity)
	for i := range args {
		child := Placeholder()
		if i < len(n.Args) {
			child = n.Args[i]
		}
		args[i] = compile(child, m, sink, childPath(path, i))
	}

	o := opFor[n.Kind]
	switch arity {
	case 1:
		return m.Unary(o, args[0])
	case 2:
		return m.Binary(o, args[0], args[1])
	case 3:
		return m.Ternary(o, args[0], args[1], args[2])
	default:
		return m.Quaternary(o, args[0], args[1], args[2], args[3])
	}
}

func childPath(path string, i int) string {
	if path == "" {
		return fmt.Sprintf("args[%d]", i)
	}
	return fmt.Sprintf("%s.args[%d]", path, i)
}
