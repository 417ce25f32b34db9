// internal/lexer/scanner.go
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"nova/internal/errors"
)

type Scanner struct {
	source    string
	file      string
	tokens    []Token
	start     int
	current   int
	line      int
	lineStart int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

func NewScannerWithFile(source, file string) *Scanner {
	s := NewScanner(source)
	s.file = file
	return s
}

func (s *Scanner) ScanTokens() ([]Token, error) {
	// Handle shebang at the beginning of the file
	if s.current == 0 && len(s.source) >= 2 && s.source[0] == '#' && s.source[1] == '!' {
		s.skipShebang()
	}

	for !s.isAtEnd() {
		s.start = s.current
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Line: s.line, Column: s.column()})
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(TokenLParen)
	case ')':
		s.addToken(TokenRParen)
	case '{':
		s.addToken(TokenLBrace)
	case '}':
		s.addToken(TokenRBrace)
	case '[':
		s.addToken(TokenLBracket)
	case ']':
		s.addToken(TokenRBracket)
	case '+':
		if s.match('=') {
			s.addToken(TokenPlusEqual)
		} else {
			s.addToken(TokenPlus)
		}
	case '-':
		if s.match('>') {
			s.addToken(TokenArrow)
		} else if s.match('=') {
			s.addToken(TokenMinusEqual)
		} else {
			s.addToken(TokenMinus)
		}
	case '*':
		if s.match('*') {
			s.addToken(TokenPower)
		} else if s.match('=') {
			s.addToken(TokenStarEqual)
		} else {
			s.addToken(TokenStar)
		}
	case '/':
		if s.match('/') {
			// Line comment, skip to end of line
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else if s.match('*') {
			if err := s.blockComment(); err != nil {
				return err
			}
		} else if s.match('=') {
			s.addToken(TokenSlashEqual)
		} else {
			s.addToken(TokenSlash)
		}
	case '%':
		s.addToken(TokenPercent)
	case '=':
		if s.match('=') {
			s.addToken(TokenDoubleEqual)
		} else if s.match('>') {
			s.addToken(TokenDoubleArrow)
		} else {
			s.addToken(TokenEqual)
		}
	case '!':
		if s.match('=') {
			s.addToken(TokenNotEqual)
		} else {
			s.addToken(TokenBang)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokenLE)
		} else if s.match('<') {
			s.addToken(TokenShiftLeft)
		} else {
			s.addToken(TokenLT)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokenGE)
		} else if s.match('>') {
			s.addToken(TokenShiftRight)
		} else {
			s.addToken(TokenGT)
		}
	case '&':
		s.addToken(TokenAmpersand)
	case '|':
		s.addToken(TokenPipe)
	case '^':
		s.addToken(TokenCaret)
	case '~':
		s.addToken(TokenTilde)
	case '?':
		if s.match('?') {
			s.addToken(TokenNullish)
		} else {
			s.addToken(TokenQuestion)
		}
	case '"', '\'':
		return s.string(c)
	case ',':
		s.addToken(TokenComma)
	case '.':
		s.addToken(TokenDot)
	case ':':
		s.addToken(TokenColon)
	case ';':
		s.addToken(TokenSemicolon)
	case '\n':
		s.newline()
	case ' ', '\r', '\t':
		// Ignore whitespace
	default:
		if isDigit(c) {
			return s.number()
		}
		if c == 'f' && (s.peek() == '"' || s.peek() == '\'') {
			quote := s.advance()
			return s.interpolatedString(quote)
		}
		if isAlpha(c) {
			s.identifier()
			return nil
		}
		return s.errorf("Unexpected character '%c'", c)
	}
	return nil
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	switch text {
	case "let":
		s.addToken(TokenLet)
	case "fn":
		s.addToken(TokenFn)
	case "if":
		s.addToken(TokenIf)
	case "else":
		s.addToken(TokenElse)
	case "while":
		s.addToken(TokenWhile)
	case "for":
		s.addToken(TokenFor)
	case "in":
		s.addToken(TokenIn)
	case "return":
		s.addToken(TokenReturn)
	case "break":
		s.addToken(TokenBreak)
	case "continue":
		s.addToken(TokenContinue)
	case "import":
		s.addToken(TokenImport)
	case "as":
		s.addToken(TokenAs)
	case "class":
		s.addToken(TokenClass)
	case "extends":
		s.addToken(TokenExtends)
	case "constructor":
		s.addToken(TokenConstructor)
	case "static":
		s.addToken(TokenStatic)
	case "new":
		s.addToken(TokenNew)
	case "this":
		s.addToken(TokenThis)
	case "super":
		s.addToken(TokenSuper)
	case "try":
		s.addToken(TokenTry)
	case "catch":
		s.addToken(TokenCatch)
	case "finally":
		s.addToken(TokenFinally)
	case "throw":
		s.addToken(TokenThrow)
	case "async":
		s.addToken(TokenAsync)
	case "await":
		s.addToken(TokenAwait)
	case "and":
		s.addToken(TokenAnd)
	case "or":
		s.addToken(TokenOr)
	case "not":
		s.addToken(TokenNot)
	case "true":
		s.addToken(TokenTrue)
	case "false":
		s.addToken(TokenFalse)
	case "null":
		s.addToken(TokenNull)
	default:
		s.addToken(TokenIdent)
	}
}

func (s *Scanner) number() error {
	for isDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}
	// A dot only belongs to the number when a digit follows; f-less dots
	// stay in the stream so method calls on literals keep working.
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) || s.peek() == '_' {
			s.advance()
		}
	}
	text := strings.ReplaceAll(s.source[s.start:s.current], "_", "")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return s.errorf("Invalid number literal '%s'", s.source[s.start:s.current])
	}
	s.tokens = append(s.tokens, Token{
		Type:   TokenNumber,
		Lexeme: s.source[s.start:s.current],
		Number: value,
		Line:   s.line,
		Column: s.tokenColumn(),
	})
	return nil
}

func (s *Scanner) string(quote byte) error {
	var sb strings.Builder
	for s.peek() != quote && !s.isAtEnd() {
		c := s.advance()
		if c == '\n' {
			s.newline()
			sb.WriteByte(c)
			continue
		}
		if c == '\\' {
			r, err := s.escape()
			if err != nil {
				return err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte(c)
	}
	if s.isAtEnd() {
		return s.errorf("Unterminated string")
	}
	s.advance() // closing quote
	s.tokens = append(s.tokens, Token{
		Type:   TokenString,
		Lexeme: sb.String(),
		Line:   s.line,
		Column: s.tokenColumn(),
	})
	return nil
}

// interpolatedString scans an f-string, splicing part and expression
// tokens directly into the stream. The opening quote has been consumed.
func (s *Scanner) interpolatedString(quote byte) error {
	s.addTokenLiteral(TokenStringStart, "")
	var part strings.Builder
	for s.peek() != quote && !s.isAtEnd() {
		if s.peek() == '$' && s.peekNext() == '{' {
			s.advance() // $
			s.advance() // {
			if part.Len() > 0 {
				s.addTokenLiteral(TokenStringMiddle, part.String())
				part.Reset()
			}
			s.addTokenLiteral(TokenInterpStart, "")
			if err := s.interpolationExpr(); err != nil {
				return err
			}
			s.addTokenLiteral(TokenInterpEnd, "")
			continue
		}
		c := s.advance()
		if c == '\n' {
			s.newline()
			part.WriteByte(c)
			continue
		}
		if c == '\\' {
			r, err := s.escape()
			if err != nil {
				return err
			}
			part.WriteRune(r)
			continue
		}
		part.WriteByte(c)
	}
	if s.isAtEnd() {
		return s.errorf("Unterminated string")
	}
	s.advance() // closing quote
	// STRING_END always closes the literal, even with an empty tail,
	// so the parser has a terminator to stop on.
	s.addTokenLiteral(TokenStringEnd, part.String())
	return nil
}

// interpolationExpr collects the expression source up to the matching
// brace and scans it with a nested scanner.
func (s *Scanner) interpolationExpr() error {
	exprStart := s.current
	depth := 1
	for depth > 0 && !s.isAtEnd() {
		c := s.advance()
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case '\n':
			s.newline()
		}
	}
	if depth > 0 {
		return s.errorf("Unterminated interpolation in string")
	}
	exprSrc := s.source[exprStart : s.current-1]
	sub := NewScannerWithFile(exprSrc, s.file)
	sub.line = s.line
	tokens, err := sub.ScanTokens()
	if err != nil {
		return err
	}
	// Drop the nested EOF
	s.tokens = append(s.tokens, tokens[:len(tokens)-1]...)
	return nil
}

func (s *Scanner) escape() (rune, error) {
	if s.isAtEnd() {
		return 0, s.errorf("Unterminated string")
	}
	c := s.advance()
	switch c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '0':
		return 0, nil
	case 'x':
		return s.hexEscape(2)
	case 'u':
		return s.hexEscape(4)
	default:
		return 0, s.errorf("Invalid escape sequence '\\%c'", c)
	}
}

func (s *Scanner) hexEscape(digits int) (rune, error) {
	if s.current+digits > len(s.source) {
		return 0, s.errorf("Unterminated string")
	}
	text := s.source[s.current : s.current+digits]
	n, err := strconv.ParseUint(text, 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, s.errorf("Invalid escape sequence '\\%c%s'", s.source[s.current-1], text)
	}
	s.current += digits
	return rune(n), nil
}

func (s *Scanner) blockComment() error {
	depth := 1
	for depth > 0 {
		if s.isAtEnd() {
			return s.errorf("Unterminated block comment")
		}
		c := s.advance()
		switch {
		case c == '/' && s.peek() == '*':
			s.advance()
			depth++
		case c == '*' && s.peek() == '/':
			s.advance()
			depth--
		case c == '\n':
			s.newline()
		}
	}
	return nil
}

func (s *Scanner) addToken(t TokenType) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: text, Line: s.line, Column: s.tokenColumn()})
}

func (s *Scanner) addTokenLiteral(t TokenType, literal string) {
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: literal, Line: s.line, Column: s.tokenColumn()})
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() byte {
	s.current++
	return s.source[s.current-1]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) newline() {
	s.line++
	s.lineStart = s.current
}

func (s *Scanner) column() int {
	return s.current - s.lineStart + 1
}

func (s *Scanner) tokenColumn() int {
	return s.start - s.lineStart + 1
}

func (s *Scanner) errorf(format string, args ...interface{}) error {
	return errors.NewSyntaxError(fmt.Sprintf(format, args...), s.file, s.line, s.tokenColumn()).
		WithSource(s.sourceLine(s.line))
}

func (s *Scanner) sourceLine(line int) string {
	lines := strings.Split(s.source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || unicode.IsDigit(rune(c))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// skipShebang skips over shebang line at the beginning of the file
func (s *Scanner) skipShebang() {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.advance()
	}
	if !s.isAtEnd() && s.peek() == '\n' {
		s.advance()
		s.newline()
	}
}
