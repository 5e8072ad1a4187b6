package toml

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser builds a map[string]any tree from the token stream
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	root      map[string]any
	current   map[string]any // table receiving key/value pairs
	defined   map[string]bool
}

func NewParser(input []byte) *Parser {
	p := &Parser{
		lexer:   NewLexer(input),
		root:    make(map[string]any),
		defined: make(map[string]bool),
	}
	p.nextToken()
	p.nextToken()
	p.current = p.root
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// Parse consumes the whole input
func (p *Parser) Parse() (map[string]any, error) {
	for p.curToken.Type != TokenEOF {
		if p.curToken.Type == TokenNewline {
			p.nextToken()
			continue
		}
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
	}
	return p.root, nil
}

func (p *Parser) parseStatement() error {
	switch p.curToken.Type {
	case TokenLBracket:
		return p.parseTableHeader()
	case TokenIdent, TokenString, TokenInteger:
		return p.parseKeyValue(p.current)
	case TokenError:
		return fmt.Errorf("line %d: %s", p.curToken.Line, p.curToken.Literal)
	default:
		return fmt.Errorf("line %d: unexpected %s", p.curToken.Line, p.curToken)
	}
}

func (p *Parser) expectLineEnd() error {
	switch p.curToken.Type {
	case TokenNewline:
		p.nextToken()
		return nil
	case TokenEOF:
		return nil
	}
	return fmt.Errorf("line %d: expected end of line, got %s", p.curToken.Line, p.curToken)
}

// parseTableHeader handles [a.b]; each table may be declared once
func (p *Parser) parseTableHeader() error {
	line := p.curToken.Line
	p.nextToken() // [

	keys, err := p.parseKey()
	if err != nil {
		return err
	}
	if p.curToken.Type != TokenRBracket {
		return fmt.Errorf("line %d: expected ']' after table name", line)
	}
	p.nextToken()

	path := strings.Join(keys, ".")
	if p.defined[path] {
		return fmt.Errorf("line %d: table %q declared twice", line, path)
	}
	p.defined[path] = true

	table, err := descend(p.root, keys)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	p.current = table
	return nil
}

// descend walks or creates nested tables along keys
func descend(m map[string]any, keys []string) (map[string]any, error) {
	for _, key := range keys {
		next, exists := m[key]
		if !exists {
			child := make(map[string]any)
			m[key] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("key %q is not a table", key)
		}
		m = child
	}
	return m, nil
}

func (p *Parser) parseKeyValue(scope map[string]any) error {
	line := p.curToken.Line
	keys, err := p.parseKey()
	if err != nil {
		return err
	}
	if p.curToken.Type != TokenEqual {
		return fmt.Errorf("line %d: expected '=' after key, got %s", line, p.curToken)
	}
	p.nextToken()

	val, err := p.parseValue()
	if err != nil {
		return err
	}

	table, err := descend(scope, keys[:len(keys)-1])
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	last := keys[len(keys)-1]
	if _, exists := table[last]; exists {
		return fmt.Errorf("line %d: duplicate key %q", line, last)
	}
	table[last] = val
	return nil
}

func (p *Parser) parseKey() ([]string, error) {
	var keys []string
	for {
		switch p.curToken.Type {
		case TokenIdent, TokenString, TokenInteger:
			keys = append(keys, p.curToken.Literal)
		default:
			return nil, fmt.Errorf("line %d: expected key, got %s", p.curToken.Line, p.curToken)
		}
		p.nextToken()
		if p.curToken.Type != TokenDot {
			return keys, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseValue() (any, error) {
	tok := p.curToken
	switch tok.Type {
	case TokenString:
		p.nextToken()
		return tok.Literal, nil
	case TokenInteger:
		p.nextToken()
		v, err := strconv.ParseInt(strings.ReplaceAll(tok.Literal, "_", ""), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", tok.Line, err)
		}
		return v, nil
	case TokenFloat:
		p.nextToken()
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", tok.Line, err)
		}
		return v, nil
	case TokenBool:
		p.nextToken()
		return tok.Literal == "true", nil
	case TokenLBracket:
		return p.parseArray()
	case TokenLBrace:
		return p.parseInlineTable()
	case TokenError:
		return nil, fmt.Errorf("line %d: %s", tok.Line, tok.Literal)
	}
	return nil, fmt.Errorf("line %d: unexpected value %s", tok.Line, tok)
}

func (p *Parser) skipNewlines() {
	for p.curToken.Type == TokenNewline {
		p.nextToken()
	}
}

// parseArray accepts newlines between elements and a trailing comma
func (p *Parser) parseArray() ([]any, error) {
	line := p.curToken.Line
	p.nextToken() // [
	arr := make([]any, 0)

	for {
		p.skipNewlines()
		if p.curToken.Type == TokenRBracket {
			p.nextToken()
			return arr, nil
		}
		if p.curToken.Type == TokenEOF {
			return nil, fmt.Errorf("line %d: unterminated array", line)
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)

		p.skipNewlines()
		switch p.curToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRBracket:
		case TokenEOF:
			return nil, fmt.Errorf("line %d: unterminated array", line)
		default:
			return nil, fmt.Errorf("line %d: expected ',' or ']' in array", p.curToken.Line)
		}
	}
}

func (p *Parser) parseInlineTable() (map[string]any, error) {
	p.nextToken() // {
	m := make(map[string]any)

	for p.curToken.Type != TokenRBrace {
		if err := p.parseKeyValue(m); err != nil {
			return nil, err
		}
		switch p.curToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRBrace:
		default:
			return nil, fmt.Errorf("line %d: expected ',' or '}' in inline table", p.curToken.Line)
		}
	}
	p.nextToken() // }
	return m, nil
}
