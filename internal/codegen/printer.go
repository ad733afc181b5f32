package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

const indentSize = 2

// Printer builds JavaScript source with indentation.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter() *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the generated source ending in exactly one newline.
func (p *Printer) String() string {
	out := strings.TrimRight(p.output.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// line writes one indented line.
func (p *Printer) line(format string, args ...any) {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	p.write(format)
	p.writeln()
}

// block writes multi-line text, indenting every non-empty line.
func (p *Printer) block(text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if l == "" {
			p.writeln()
			continue
		}
		p.line(l)
	}
}

// verbatim writes text unchanged. It is used for user code, whose
// template literals must not gain indentation.
func (p *Printer) verbatim(text string) {
	text = strings.Trim(text, "\n")
	if text == "" {
		return
	}
	p.output.WriteString(text)
	p.writeln()
}

func (p *Printer) blank() {
	if !bytes.HasSuffix(p.output.Bytes(), []byte("\n\n")) && p.output.Len() > 0 {
		p.writeln()
	}
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// open writes a line and indents what follows, as in "function f() {".
func (p *Printer) open(format string, args ...any) {
	p.line(format, args...)
	p.indent()
}

// close dedents and writes the closing line.
func (p *Printer) close(format string, args ...any) {
	p.dedent()
	p.line(format, args...)
}
