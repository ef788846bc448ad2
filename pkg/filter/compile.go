package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/allocview/pkg/model"
)

// Compile parses a filter expression and compiles it into a reusable
// Filter value. It fails only on malformed boolean structure; atom text
// that matches no primitive form compiles to the default predicate. An
// empty expression compiles to the default filter.
func Compile(src string, r Resolver) (*Filter, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		f := Default(r)
		f.source = src
		return f, nil
	}
	return &Filter{pred: compileExpr(expr, r), source: src}, nil
}

// CompileExpr compiles an already parsed expression tree.
func CompileExpr(expr Expr, r Resolver) *Filter {
	if expr == nil {
		return Default(r)
	}
	return &Filter{pred: compileExpr(expr, r)}
}

func compileExpr(e Expr, r Resolver) Predicate {
	switch e := e.(type) {
	case *AndExpr:
		x := compileExpr(e.X, r)
		y := compileExpr(e.Y, r)
		return func(rec *model.AllocationRecord, frame model.StackFrame) bool {
			return x(rec, frame) && y(rec, frame)
		}
	case *OrExpr:
		x := compileExpr(e.X, r)
		y := compileExpr(e.Y, r)
		return func(rec *model.AllocationRecord, frame model.StackFrame) bool {
			return x(rec, frame) || y(rec, frame)
		}
	case *NotExpr:
		// Negation is scoped to in-project frames so that negating a
		// filter can never resurface frames the default predicate
		// would exclude.
		inner := compileExpr(e.X, r)
		return func(rec *model.AllocationRecord, frame model.StackFrame) bool {
			return inProject(r, frame) && !inner(rec, frame)
		}
	case *AtomExpr:
		return compileAtom(e.Text, r)
	default:
		return DefaultPredicate(r)
	}
}

var (
	sizeSetPattern = regexp.MustCompile(`^[0-9][0-9,\-]*$`)
	identPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.*/\[\]]*$`)
)

// compileAtom compiles a primitive matcher:
//
//	@Label       package label equality; bare @ matches any in-project frame
//	"name"       file base name equality, optional :line suffix
//	/re/         regexp over the full file path, optional :line suffix
//	:ident       function name equality
//	N, N-M, ...  allocation size set
//	Ident[=S]    type tag match, optionally constrained to size set S
//
// Anything else falls through to the default predicate.
func compileAtom(text string, r Resolver) Predicate {
	switch {
	case strings.HasPrefix(text, "@"):
		return compilePackageAtom(text[1:], r)
	case strings.HasPrefix(text, `"`):
		return compileFileAtom(text, r)
	case strings.HasPrefix(text, "/"):
		return compileRegexAtom(text, r)
	case strings.HasPrefix(text, ":"):
		return compileFuncAtom(text[1:])
	case sizeSetPattern.MatchString(text):
		return compileSizeAtom(text, r)
	default:
		return compileTypeAtom(text, r)
	}
}

func compilePackageAtom(label string, r Resolver) Predicate {
	if label == "" {
		return DefaultPredicate(r)
	}
	return func(_ *model.AllocationRecord, frame model.StackFrame) bool {
		return r.PackageLabel(frame.File) == label
	}
}

func compileFileAtom(text string, r Resolver) Predicate {
	name, suffix := splitDelimited(text, '"')
	// Quoted package matchers: "@Label" is the same as @Label.
	if strings.HasPrefix(name, "@") && suffix == "" {
		return compilePackageAtom(name[1:], r)
	}
	lines, ok := parseLineSuffix(suffix)
	if !ok {
		return DefaultPredicate(r)
	}
	return func(_ *model.AllocationRecord, frame model.StackFrame) bool {
		if frame.BaseFile() != name {
			return false
		}
		return lines == nil || (frame.Line > 0 && lines.contains(uint64(frame.Line)))
	}
}

func compileRegexAtom(text string, r Resolver) Predicate {
	pattern, suffix := splitDelimited(text, '/')
	re, err := regexp.Compile(pattern)
	if err != nil {
		return DefaultPredicate(r)
	}
	lines, ok := parseLineSuffix(suffix)
	if !ok {
		return DefaultPredicate(r)
	}
	return func(_ *model.AllocationRecord, frame model.StackFrame) bool {
		if !re.MatchString(frame.File) {
			return false
		}
		return lines == nil || (frame.Line > 0 && lines.contains(uint64(frame.Line)))
	}
}

func compileFuncAtom(name string) Predicate {
	return func(_ *model.AllocationRecord, frame model.StackFrame) bool {
		return frame.Function == name || frame.ShortFunction() == name
	}
}

func compileSizeAtom(text string, r Resolver) Predicate {
	sizes, ok := parseNumSet(text)
	if !ok {
		return DefaultPredicate(r)
	}
	return func(rec *model.AllocationRecord, frame model.StackFrame) bool {
		return inProject(r, frame) && sizes.contains(rec.Size)
	}
}

func compileTypeAtom(text string, r Resolver) Predicate {
	name := text
	var sizes *numSet
	if eq := strings.IndexByte(text, '='); eq >= 0 {
		name = text[:eq]
		parsed, ok := parseNumSet(text[eq+1:])
		if !ok {
			return DefaultPredicate(r)
		}
		sizes = parsed
	}
	if !identPattern.MatchString(name) {
		return DefaultPredicate(r)
	}
	return func(rec *model.AllocationRecord, frame model.StackFrame) bool {
		if !inProject(r, frame) || !matchType(rec.Type, name) {
			return false
		}
		return sizes == nil || sizes.contains(rec.Size)
	}
}

// matchType reports whether tag is name or a refinement of name, i.e.
// name followed by '.', '[', '*' or '/'.
func matchType(tag, name string) bool {
	if tag == name {
		return true
	}
	if !strings.HasPrefix(tag, name) || len(tag) == len(name) {
		return false
	}
	return strings.IndexByte(".[*/", tag[len(name)]) >= 0
}

// splitDelimited splits `<d>body<d>suffix` into (body, suffix). With no
// closing delimiter the whole remainder is the body.
func splitDelimited(text string, d byte) (body, suffix string) {
	rest := text[1:]
	if end := strings.IndexByte(rest, d); end >= 0 {
		return rest[:end], rest[end+1:]
	}
	return rest, ""
}

// numSet is a small set of unsigned integers given as single values,
// ranges, or comma-separated combinations thereof.
type numSet struct {
	ranges [][2]uint64
}

func (s *numSet) contains(v uint64) bool {
	for _, r := range s.ranges {
		if v >= r[0] && v <= r[1] {
			return true
		}
	}
	return false
}

// parseNumSet parses "N", "N-M" or "N,M,K" (parts may mix ranges and
// single values).
func parseNumSet(text string) (*numSet, bool) {
	if text == "" {
		return nil, false
	}
	set := &numSet{}
	for _, part := range strings.Split(text, ",") {
		lo, hi, ok := parseNumRange(part)
		if !ok {
			return nil, false
		}
		set.ranges = append(set.ranges, [2]uint64{lo, hi})
	}
	return set, true
}

func parseNumRange(part string) (lo, hi uint64, ok bool) {
	if dash := strings.IndexByte(part, '-'); dash >= 0 {
		lo, err1 := strconv.ParseUint(part[:dash], 10, 64)
		hi, err2 := strconv.ParseUint(part[dash+1:], 10, 64)
		if err1 != nil || err2 != nil || lo > hi {
			return 0, 0, false
		}
		return lo, hi, true
	}
	v, err := strconv.ParseUint(part, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return v, v, true
}

// parseLineSuffix parses the optional line constraint after a file or
// regexp matcher: ":A", ":A:B" (range), ":A-B" or ":A,B,C". An empty
// suffix means no constraint. Returns ok=false on malformed text.
func parseLineSuffix(suffix string) (*numSet, bool) {
	if suffix == "" {
		return nil, true
	}
	if !strings.HasPrefix(suffix, ":") {
		return nil, false
	}
	body := suffix[1:]
	// ":A:B" is a closed range, same as ":A-B".
	if colon := strings.IndexByte(body, ':'); colon >= 0 {
		body = body[:colon] + "-" + body[colon+1:]
	}
	return parseNumSet(body)
}
