// Package dsl 解析 .labels 价签清单文件：一个 sheet 块内包含可选的 layout 设置与若干 product 条目。
//
//	sheet "GMart 12/2025" {
//	  layout {
//	    name_font_size: 6.5pt
//	    price_y_offset: -0.5mm
//	  }
//	  product "Bánh quy bơ Danisa" price "150000" barcode "89312345678" qty 3
//	  product "Sữa tươi" {
//	    price: "32.000đ"
//	    barcode: 8935000000017
//	  }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node for a .labels file.
type File struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    StringLiteral  `parser:"Newline* 'sheet' @String"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Entry is a top-level statement inside the sheet block.
type Entry struct {
	Layout  *LayoutBlock `parser:"  @@"`
	Product *ProductDecl `parser:"| @@"`
}

// Kind returns the human-readable entry type.
func (e *Entry) Kind() string {
	switch {
	case e == nil:
		return "unknown"
	case e.Layout != nil:
		return "layout"
	case e.Product != nil:
		return "product"
	default:
		return "unknown"
	}
}

// LayoutBlock overrides layout settings.
type LayoutBlock struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Body *Body          `parser:"'layout' @@"`
}

// ProductDecl declares one product. Attributes may be given inline, in a block, or both.
type ProductDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  StringLiteral  `parser:"'product' @String"`
	Attrs []*Attr        `parser:"@@*"`
	Body  *Body          `parser:"@@?"`
}

// Attr is an inline `key value` pair.
type Attr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"@@"`
}

// Body is a brace-delimited list of settings.
type Body struct {
	Settings []*Setting `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Setting uses colon syntax (key: value).
type Setting struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' @@"`
}

// Value is a quoted string, a number with optional unit, or a bare word.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as written (strings unquoted).
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}
