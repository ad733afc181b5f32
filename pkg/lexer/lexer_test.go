package lexer

import (
	"testing"

	"github.com/acklang/ack/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexer_Declaration(t *testing.T) {
	tokens := New("let count = 0;").Tokenize()

	expected := []struct {
		kind token.Kind
		lit  string
	}{
		{token.KEYWORD, "let"},
		{token.IDENT, "count"},
		{token.ASSIGN, "="},
		{token.NUMBER, "0"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	require.Len(t, tokens, len(expected), "wrong number of tokens")
	for i, exp := range expected {
		assert.Equal(t, exp.kind, tokens[i].Kind, "token[%d] kind", i)
		assert.Equal(t, exp.lit, tokens[i].Literal, "token[%d] literal", i)
	}
}

func TestLexer_Operators(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"=", token.ASSIGN},
		{"==", token.EQ},
		{"===", token.EQ},
		{"!==", token.NE},
		{"=>", token.ARROW},
		{"+=", token.COMPOUND_ASSIGN},
		{"??=", token.COMPOUND_ASSIGN},
		{">>>=", token.COMPOUND_ASSIGN},
		{"++", token.INCREMENT},
		{"--", token.DECREMENT},
		{"?.", token.OPTCHAIN},
		{"...", token.SPREAD},
		{"**", token.POWER},
		{"@", token.AT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := New(tt.input).Tokenize()
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.kind, tokens[0].Kind)
			assert.Equal(t, tt.input, tokens[0].Literal)
		})
	}
}

func TestLexer_ConditionalBeforeDecimal(t *testing.T) {
	tokens := New("a?.5:1").Tokenize()
	assert.Equal(t, []token.Kind{
		token.IDENT, token.QUESTION, token.NUMBER, token.COLON, token.NUMBER, token.EOF,
	}, kinds(tokens))
}

func TestLexer_CommentsAndStrings(t *testing.T) {
	input := "// total is derived\nlet s = 'count = 1'; /* count */ let d = \"x\""
	tokens := New(input).Tokenize()

	var comments, strings int
	for _, tok := range tokens {
		switch tok.Kind {
		case token.COMMENT:
			comments++
		case token.STRING:
			strings++
		case token.IDENT:
			assert.NotEqual(t, "count", tok.Literal, "identifier leaked out of a comment or string")
		}
	}
	assert.Equal(t, 2, comments)
	assert.Equal(t, 2, strings)
	assert.Equal(t, token.LineComment, token.CommentKindOf(tokens[0].Literal))
}

func TestLexer_RegexLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		regex string
	}{
		{"after assignment", "let b = /'/.test(x)", "/'/"},
		{"flags", `s.replace(/"/g, '')`, `/"/g`},
		{"backtick", "const re = /`/;", "/`/"},
		{"slash in class", "let r = /[/]+/.source", "/[/]+/"},
		{"escaped slash", `x = /a\/b/i`, `/a\/b/i`},
		{"after return", "return /=+/", "/=+/"},
		{"statement start", "/x/.test(s)", "/x/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var regexes []string
			for _, tok := range New(tt.input).Tokenize() {
				switch tok.Kind {
				case token.REGEX:
					regexes = append(regexes, tok.Literal)
				case token.STRING, token.TEMPLATE:
					assert.NotContains(t, tt.regex, tok.Literal, "regex body lexed as a string")
				}
			}
			assert.Equal(t, []string{tt.regex}, regexes)
		})
	}
}

func TestLexer_Division(t *testing.T) {
	tests := []string{
		"a / b / c",
		"(a + 1) / 2",
		"list[0] / 2",
		"n++ / 2",
		"x /= 2",
	}
	for _, input := range tests {
		for _, tok := range New(input).Tokenize() {
			assert.NotEqual(t, token.REGEX, tok.Kind, input)
		}
	}
}

func TestLexer_UnterminatedStringStopsAtNewline(t *testing.T) {
	tokens := New("let a = 'oops\nlet b = 1").Tokenize()
	require.GreaterOrEqual(t, len(tokens), 4)
	assert.Equal(t, token.STRING, tokens[3].Kind)
	assert.Equal(t, "'oops", tokens[3].Literal)
	assert.Equal(t, token.KEYWORD, tokens[4].Kind)
	assert.Equal(t, 2, tokens[4].Pos.Line)
}

func TestLexer_TemplateLiteral(t *testing.T) {
	tokens := New("`hi ${name} and ${ {a: other}.a }!`").Tokenize()

	var idents []string
	var chunks []string
	for _, tok := range tokens {
		switch tok.Kind {
		case token.IDENT:
			idents = append(idents, tok.Literal)
		case token.TEMPLATE:
			chunks = append(chunks, tok.Literal)
		}
	}

	assert.Equal(t, []string{"name", "a", "other", "a"}, idents)
	assert.Equal(t, []string{"`hi ${", "} and ${", "}!`"}, chunks)
}

func TestLexer_Positions(t *testing.T) {
	tokens := New("let a = 1;\n  a = 2;").Tokenize()

	var second token.Token
	for _, tok := range tokens {
		if tok.Kind == token.IDENT && tok.Pos.Line == 2 {
			second = tok
			break
		}
	}

	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 13}, second.Pos)
}

func TestLexer_MarkupTags(t *testing.T) {
	tokens := NewWithMode(`<h1 id="x">{count}</h1><br/>`, ModeMarkup).Tokenize()

	assert.Equal(t, []token.Kind{
		token.TAG_OPEN, token.IDENT, token.ASSIGN, token.STRING, token.GT,
		token.LBRACE, token.IDENT, token.RBRACE,
		token.TAG_CLOSE,
		token.TAG_OPEN, token.SLASH, token.GT,
		token.EOF,
	}, kinds(tokens))
	assert.Equal(t, "<h1", tokens[0].Literal)
	assert.Equal(t, "</h1>", tokens[8].Literal)
}

func TestLexer_ScriptModeLessThan(t *testing.T) {
	tokens := New("a<b").Tokenize()
	assert.Equal(t, []token.Kind{token.IDENT, token.LT, token.IDENT, token.EOF}, kinds(tokens))
}

func TestLexer_Illegal(t *testing.T) {
	tokens := New("a € b").Tokenize()
	require.Len(t, tokens, 4)
	assert.Equal(t, token.ILLEGAL, tokens[1].Kind)
	assert.Equal(t, "€", tokens[1].Literal)
}
