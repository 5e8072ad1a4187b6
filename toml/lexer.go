package toml

import (
	"strconv"
	"strings"
)

// Lexer splits configuration text into tokens; comments are dropped here
type Lexer struct {
	input []byte
	pos   int
	line  int
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken returns the next significant token
func (l *Lexer) NextToken() Token {
	l.skipBlank()

	if l.pos >= len(l.input) {
		return l.token(TokenEOF, "")
	}

	ch := l.input[l.pos]
	switch ch {
	case '\n':
		l.pos++
		tok := l.token(TokenNewline, "\n")
		l.line++
		return tok
	case '=':
		l.pos++
		return l.token(TokenEqual, "=")
	case '.':
		l.pos++
		return l.token(TokenDot, ".")
	case ',':
		l.pos++
		return l.token(TokenComma, ",")
	case '[':
		l.pos++
		return l.token(TokenLBracket, "[")
	case ']':
		l.pos++
		return l.token(TokenRBracket, "]")
	case '{':
		l.pos++
		return l.token(TokenLBrace, "{")
	case '}':
		l.pos++
		return l.token(TokenRBrace, "}")
	case '"':
		return l.readBasicString()
	case '\'':
		return l.readLiteralString()
	}

	if isBareChar(ch) || ch == '+' {
		return l.readBare()
	}

	l.pos++
	return l.token(TokenError, "unexpected character "+strconv.QuoteRune(rune(ch)))
}

func (l *Lexer) token(typ TokenType, literal string) Token {
	return Token{Type: typ, Literal: literal, Line: l.line}
}

// skipBlank consumes spaces, tabs, carriage returns and comments up to the newline
func (l *Lexer) skipBlank() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) readBasicString() Token {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '\n':
			return l.token(TokenError, "unterminated string")
		case '"':
			l.pos++
			return l.token(TokenString, sb.String())
		case '\\':
			if l.pos+1 >= len(l.input) {
				return l.token(TokenError, "unterminated escape")
			}
			l.pos++
			switch esc := l.input[l.pos]; esc {
			case '"', '\\':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return l.token(TokenError, "invalid escape \\"+string(esc))
			}
			l.pos++
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return l.token(TokenError, "unterminated string")
}

func (l *Lexer) readLiteralString() Token {
	l.pos++
	start := l.pos
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\n':
			return l.token(TokenError, "unterminated string")
		case '\'':
			lit := string(l.input[start:l.pos])
			l.pos++
			return l.token(TokenString, lit)
		}
		l.pos++
	}
	return l.token(TokenError, "unterminated string")
}

// readBare reads a bare key or a scalar and classifies it
// Dots are consumed only when the run is numeric so that dotted keys still split
func (l *Lexer) readBare() Token {
	start := l.pos
	first := l.input[l.pos]
	numeric := isDigit(first) || first == '+' || first == '-'

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isBareChar(ch) || ch == '+' || (ch == '.' && numeric) {
			l.pos++
			continue
		}
		break
	}
	lit := string(l.input[start:l.pos])

	switch {
	case lit == "true" || lit == "false":
		return l.token(TokenBool, lit)
	case numeric && isInteger(lit):
		return l.token(TokenInteger, lit)
	case numeric && isFloat(lit):
		return l.token(TokenFloat, lit)
	case strings.ContainsAny(lit, ".+"):
		return l.token(TokenError, "malformed number "+strconv.Quote(lit))
	}
	return l.token(TokenIdent, lit)
}

func isInteger(lit string) bool {
	_, err := strconv.ParseInt(strings.ReplaceAll(lit, "_", ""), 0, 64)
	return err == nil
}

func isFloat(lit string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
	return err == nil
}

func isBareChar(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
