package css

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns stylesheet text into a syntax tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a syntax tree. Unlike tdewolff grammar parser
// it keeps comments inside blocks, accepts rules nested inside rules and
// remembers whether the last statement of every block was terminated by ";".
// The optional source parameter identifies what's being parsed (for debug logging).
//
// Syntax errors are returned as *parse.Error carrying line, column and context.
func (p *Parser) Parse(data []byte, source ...string) (*Root, error) {
	var src string
	if len(source) > 0 {
		src = source[0]
	}
	if src != "" {
		p.log.Debug("Parsing CSS", zap.String("source", src), zap.Int("bytes", len(data)))
	}

	tokens, err := tokenize(data)
	if err != nil {
		return nil, err
	}

	s := &scanner{data: data, tokens: tokens}
	nodes, terminated, err := s.statements(false, 0)
	if err != nil {
		return nil, err
	}

	root := &Root{Body: Body{Nodes: nodes}}
	root.Fmt.Terminated = terminated

	p.log.Debug("Parsed CSS", zap.String("source", src), zap.Int("tokens", len(tokens)), zap.Int("nodes", Count(root)))
	return root, nil
}

type token struct {
	tt     css.TokenType
	data   string
	offset int
}

// tokenize runs lexer over the whole input. Stylesheets are small enough to
// keep all tokens in memory which gives parser unlimited lookahead.
func tokenize(data []byte) ([]token, error) {
	lex := css.NewLexer(parse.NewInputBytes(data))

	var (
		tokens []token
		offset int
	)
	for {
		tt, text := lex.Next()
		if tt == css.ErrorToken {
			if err := lex.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, parse.NewError(bytes.NewReader(data), offset, "%v", err)
			}
			return tokens, nil
		}
		tokens = append(tokens, token{tt: tt, data: string(text), offset: offset})
		offset += len(text)
	}
}

type scanner struct {
	data   []byte
	tokens []token
	pos    int
}

func (s *scanner) errorf(offset int, format string, args ...any) error {
	return parse.NewError(bytes.NewReader(s.data), offset, format, args...)
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.tokens)
}

func (s *scanner) skipWhitespace() {
	for !s.eof() && s.tokens[s.pos].tt == css.WhitespaceToken {
		s.pos++
	}
}

// statements reads list of statements until EOF (top level) or matching
// closing brace (nested). open is offset of the opening brace and is used
// for error reporting only.
func (s *scanner) statements(nested bool, open int) ([]Node, bool, error) {
	var (
		nodes      []Node
		terminated bool
	)
	for {
		s.skipWhitespace()
		if s.eof() {
			if nested {
				return nil, false, s.errorf(open, "unclosed block")
			}
			return nodes, terminated, nil
		}

		t := s.tokens[s.pos]
		switch t.tt {
		case css.RightBraceToken:
			if !nested {
				return nil, false, s.errorf(t.offset, "unexpected }")
			}
			s.pos++
			return nodes, terminated, nil

		case css.SemicolonToken, css.CDOToken, css.CDCToken:
			s.pos++

		case css.CommentToken:
			s.pos++
			nodes = append(nodes, &Comment{Text: commentText(t.data)})

		case css.AtKeywordToken:
			n, term, err := s.atRule()
			if err != nil {
				return nil, false, err
			}
			nodes, terminated = append(nodes, n), term

		default:
			n, term, err := s.ruleOrDeclaration()
			if err != nil {
				return nil, false, err
			}
			nodes, terminated = append(nodes, n), term
		}
	}
}

func (s *scanner) atRule() (Node, bool, error) {
	t := s.tokens[s.pos]
	s.pos++

	at := &AtRule{Name: strings.TrimPrefix(t.data, "@")}
	toks, end := s.collect(false)
	at.Params = joinTokens(toks)

	switch end {
	case css.LeftBraceToken:
		nodes, terminated, err := s.statements(true, s.tokens[s.pos-1].offset)
		if err != nil {
			return nil, false, err
		}
		at.Block, at.Nodes = true, nodes
		at.Fmt.Terminated = terminated
		return at, false, nil
	case css.SemicolonToken:
		return at, true, nil
	default:
		// ended by closing brace of enclosing block or EOF
		return at, false, nil
	}
}

func (s *scanner) ruleOrDeclaration() (Node, bool, error) {
	first := s.tokens[s.pos]
	// custom property values may legitimately contain braces
	custom := first.tt == css.CustomPropertyNameToken

	toks, end := s.collect(custom)
	if end == css.LeftBraceToken {
		rule := &Rule{Selector: joinTokens(toks)}
		nodes, terminated, err := s.statements(true, s.tokens[s.pos-1].offset)
		if err != nil {
			return nil, false, err
		}
		rule.Nodes = nodes
		rule.Fmt.Terminated = terminated
		return rule, false, nil
	}

	decl, err := s.declaration(toks, first.offset)
	if err != nil {
		return nil, false, err
	}
	return decl, end == css.SemicolonToken, nil
}

var importantSuffix = regexp.MustCompile(`(?i)\s*!\s*important$`)

func (s *scanner) declaration(toks []token, offset int) (*Declaration, error) {
	colon, level := -1, 0
	for i, t := range toks {
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			level++
		case css.RightParenthesisToken, css.RightBracketToken:
			if level > 0 {
				level--
			}
		case css.ColonToken:
			if level == 0 && colon < 0 {
				colon = i
			}
		}
	}
	if colon < 0 {
		return nil, s.errorf(offset, "unknown word %q", joinTokens(toks))
	}

	decl := &Declaration{
		Prop:  joinTokens(toks[:colon]),
		Value: joinTokens(toks[colon+1:]),
	}
	if decl.Prop == "" {
		return nil, s.errorf(offset, "missing property name")
	}
	if loc := importantSuffix.FindStringIndex(decl.Value); loc != nil {
		decl.Value = strings.TrimSpace(decl.Value[:loc[0]])
		decl.Important = true
	}
	return decl, nil
}

// collect gathers tokens of a single prelude or statement. It stops at ";"
// or "{" (both consumed) or at "}" (left for the caller) found outside of
// parentheses and brackets. When braces is set, balanced braces are treated
// as part of the statement.
func (s *scanner) collect(braces bool) ([]token, css.TokenType) {
	var (
		start  = s.pos
		parens int
		curly  int
	)
	for ; s.pos < len(s.tokens); s.pos++ {
		t := s.tokens[s.pos]
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			parens++
		case css.RightParenthesisToken, css.RightBracketToken:
			if parens > 0 {
				parens--
			}
		case css.LeftBraceToken:
			if braces {
				curly++
			} else if parens == 0 {
				s.pos++
				return s.tokens[start : s.pos-1], t.tt
			}
		case css.RightBraceToken:
			if curly > 0 {
				curly--
				continue
			}
			return s.tokens[start:s.pos], t.tt
		case css.SemicolonToken:
			if parens == 0 && curly == 0 {
				s.pos++
				return s.tokens[start : s.pos-1], t.tt
			}
		}
	}
	return s.tokens[start:], css.ErrorToken
}

// joinTokens restores text of token run collapsing every whitespace run into
// a single space and dropping leading and trailing whitespace.
func joinTokens(toks []token) string {
	var (
		sb    strings.Builder
		space bool
	)
	for _, t := range toks {
		if t.tt == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteString(t.data)
	}
	return sb.String()
}

func commentText(raw string) string {
	raw = strings.TrimPrefix(raw, "/*")
	return strings.TrimSuffix(raw, "*/")
}
