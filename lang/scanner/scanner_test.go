package scanner_test

import (
	"testing"

	"github.com/archerlang/archer/lang/scanner"
	"github.com/archerlang/archer/lang/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []scanner.Tok) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanAllPunctuationAndOperators(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`( ) { } [ ] , . ; : ~ + - * / % ** & | ^ ! = < > <= >= == != +=`))
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACK, token.RBRACK, token.COMMA, token.DOT, token.SEMI,
		token.COLON, token.TILDE, token.PLUS, token.MINUS, token.STAR,
		token.SLASH, token.PERCENT, token.STARSTAR, token.AMPERSAND,
		token.PIPE, token.CIRCUMFLEX, token.BANG, token.EQ, token.LT,
		token.GT, token.LE, token.GE, token.EQL, token.NEQ, token.PLUS_EQ,
		token.EOF,
	}, kinds(toks))
}

func TestScanAllCompoundAssignAndIncrement(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`++ -- <<= >>= **=`))
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		token.PLUSPLUS, token.MINUSMINUS, token.LTLT_EQ, token.GTGT_EQ,
		token.STARSTAR_EQ, token.EOF,
	}, kinds(toks))
}

func TestScanAllKeywordsAndIdentifiers(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`var fun if else while for in class this super true false nil myVar`))
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		token.VAR, token.FUN, token.IF, token.ELSE, token.WHILE, token.FOR,
		token.IN, token.CLASS, token.THIS, token.SUPER, token.TRUE,
		token.FALSE, token.NIL, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestScanAllNumberLiterals(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`123 1.5 1e3 1.25e-2`))
	require.NoError(t, err)
	require.Len(t, toks, 5) // 4 numbers + EOF
	require.Equal(t, 123.0, toks[0].Value)
	require.Equal(t, 1.5, toks[1].Value)
	require.Equal(t, 1000.0, toks[2].Value)
	require.Equal(t, 0.0125, toks[3].Value)
}

func TestScanAllStringLiteralWithEscapes(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`"hello\nworld"`))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello\nworld", toks[0].Value)
}

func TestScanAllUnterminatedStringIsError(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`"unterminated`))
	require.Error(t, err)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanAllSkipsLineAndBlockComments(t *testing.T) {
	toks, err := scanner.ScanAll([]byte("// a comment\nvar /* inline */ x = 1;"))
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		token.VAR, token.IDENT, token.EQ, token.NUMBER, token.SEMI, token.EOF,
	}, kinds(toks))
}

func TestScanAllTracksLineNumbers(t *testing.T) {
	toks, err := scanner.ScanAll([]byte("var x = 1;\nvar y = 2;"))
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Line)

	var secondVarLine int
	seen := 0
	for _, tok := range toks {
		if tok.Kind == token.VAR {
			seen++
			if seen == 2 {
				secondVarLine = tok.Line
			}
		}
	}
	require.Equal(t, 2, secondVarLine)
}

func TestScanAllUnexpectedCharacterIsError(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`@`))
	require.Error(t, err)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
