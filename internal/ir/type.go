package ir

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Type identifies a value in the object graph: a qualified name, ordered
// generic arguments and an optional qualifier tag. Types are compared
// structurally and must not be mutated after construction.
type Type struct {
	QualifiedName string
	Args          []Type
	Qualifier     string
}

// Named returns an unqualified Type.
func Named(qualifiedName string, args ...Type) Type {
	return Type{QualifiedName: qualifiedName, Args: args}
}

// WithQualifier returns a copy of t tagged with qualifier q.
func (t Type) WithQualifier(q string) Type {
	t.Qualifier = strings.TrimPrefix(q, "@")
	return t
}

// String renders t in the same syntax ParseType accepts:
// "@Qualifier pkg.Name<pkg.Arg, pkg.Other>".
func (t Type) String() string {
	var b strings.Builder
	if t.Qualifier != "" {
		b.WriteByte('@')
		b.WriteString(t.Qualifier)
		b.WriteByte(' ')
	}
	t.writeBase(&b)
	return b.String()
}

func (t Type) writeBase(b *strings.Builder) {
	b.WriteString(t.QualifiedName)
	if len(t.Args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, a := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte('>')
}

// Key is the canonical map key for t. Two Types are equal iff their keys are.
func (t Type) Key() string {
	return t.String()
}

// IsZero reports whether t has no name.
func (t Type) IsZero() bool {
	return t.QualifiedName == ""
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	return Compare(t, o) == 0
}

// SimpleName is the last dot-separated segment of the qualified name.
func (t Type) SimpleName() string {
	if i := strings.LastIndexByte(t.QualifiedName, '.'); i >= 0 {
		return t.QualifiedName[i+1:]
	}
	return t.QualifiedName
}

// Compare orders Types by qualified name, then generic arguments, then
// qualifier. The order is total and independent of construction order.
func Compare(a, b Type) int {
	if c := strings.Compare(a.QualifiedName, b.QualifiedName); c != 0 {
		return c
	}
	n := min(len(a.Args), len(b.Args))
	for i := 0; i < n; i++ {
		if c := Compare(a.Args[i], b.Args[i]); c != 0 {
			return c
		}
	}
	if len(a.Args) != len(b.Args) {
		if len(a.Args) < len(b.Args) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Qualifier, b.Qualifier)
}

// SortTypes sorts types in place using Compare.
func SortTypes(types []Type) {
	sort.SliceStable(types, func(i, j int) bool {
		return Compare(types[i], types[j]) < 0
	})
}

// PreferredName derives an accessor name for t: qualifier words, then
// generic argument names, then the simple name, in lowerCamelCase.
//
//	java.util.List<java.lang.String>  -> stringList
//	@Named("prod") com.example.Db    -> namedProdDb
func (t Type) PreferredName() string {
	words := t.nameWords()
	if len(words) == 0 {
		return "value"
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(lowerFirst(w))
		} else {
			b.WriteString(upperFirst(w))
		}
	}
	name := b.String()
	if r := []rune(name); unicode.IsDigit(r[0]) {
		name = "_" + name
	}
	return name
}

func (t Type) nameWords() []string {
	var words []string
	words = append(words, identWords(t.Qualifier)...)
	for _, a := range t.Args {
		words = append(words, a.nameWords()...)
	}
	simple := strings.ReplaceAll(t.SimpleName(), "[]", "Array")
	words = append(words, identWords(simple)...)
	return words
}

// identWords splits s on every character that cannot appear in an identifier.
func identWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ParseType parses the textual form produced by Type.String.
func ParseType(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return Type{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("parse type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) parseType() (Type, error) {
	p.skipSpace()
	var t Type
	if p.pos < len(p.src) && p.src[p.pos] == '@' {
		q, err := p.parseQualifier()
		if err != nil {
			return Type{}, err
		}
		t.Qualifier = q
		p.skipSpace()
	}

	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return Type{}, fmt.Errorf("expected type name at offset %d", start)
	}
	t.QualifiedName = p.src[start:p.pos]

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		for {
			arg, err := p.parseType()
			if err != nil {
				return Type{}, err
			}
			t.Args = append(t.Args, arg)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return Type{}, fmt.Errorf("unterminated type arguments")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == '>' {
				p.pos++
				break
			}
			return Type{}, fmt.Errorf("unexpected %q in type arguments at offset %d", p.src[p.pos], p.pos)
		}
	}
	return t, nil
}

// parseQualifier reads "@Name" or "@Name(args)"; parentheses may contain spaces.
func (p *typeParser) parseQualifier() (string, error) {
	p.pos++ // '@'
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth < 0 {
				return "", fmt.Errorf("unbalanced ')' in qualifier at offset %d", p.pos)
			}
		} else if depth == 0 && unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	if depth != 0 {
		return "", fmt.Errorf("unterminated qualifier")
	}
	if start == p.pos {
		return "", fmt.Errorf("empty qualifier at offset %d", start)
	}
	return p.src[start:p.pos], nil
}

func isNameByte(c byte) bool {
	return c == '.' || c == '_' || c == '$' || c == '[' || c == ']' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
