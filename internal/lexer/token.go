// internal/lexer/token.go
package lexer

import "fmt"

type TokenType string

const (
	// Keywords
	TokenLet         TokenType = "LET"
	TokenFn          TokenType = "FN"
	TokenIf          TokenType = "IF"
	TokenElse        TokenType = "ELSE"
	TokenWhile       TokenType = "WHILE"
	TokenFor         TokenType = "FOR"
	TokenIn          TokenType = "IN"
	TokenReturn      TokenType = "RETURN"
	TokenBreak       TokenType = "BREAK"
	TokenContinue    TokenType = "CONTINUE"
	TokenImport      TokenType = "IMPORT"
	TokenAs          TokenType = "AS"
	TokenClass       TokenType = "CLASS"
	TokenExtends     TokenType = "EXTENDS"
	TokenConstructor TokenType = "CONSTRUCTOR"
	TokenStatic      TokenType = "STATIC"
	TokenNew         TokenType = "NEW"
	TokenThis        TokenType = "THIS"
	TokenSuper       TokenType = "SUPER"
	TokenTry         TokenType = "TRY"
	TokenCatch       TokenType = "CATCH"
	TokenFinally     TokenType = "FINALLY"
	TokenThrow       TokenType = "THROW"
	TokenAsync       TokenType = "ASYNC"
	TokenAwait       TokenType = "AWAIT"
	TokenAnd         TokenType = "AND"
	TokenOr          TokenType = "OR"
	TokenNot         TokenType = "NOT"

	// Literals
	TokenTrue   TokenType = "TRUE"
	TokenFalse  TokenType = "FALSE"
	TokenNull   TokenType = "NULL"
	TokenIdent  TokenType = "IDENT"
	TokenString TokenType = "STRING"
	TokenNumber TokenType = "NUMBER"

	// Interpolated string parts. An f"..." literal is spliced into the
	// token stream as STRING_START, then alternating STRING_MIDDLE and
	// INTERP_START <expr tokens> INTERP_END runs, closed by STRING_END.
	TokenStringStart  TokenType = "STRING_START"
	TokenStringMiddle TokenType = "STRING_MIDDLE"
	TokenStringEnd    TokenType = "STRING_END"
	TokenInterpStart  TokenType = "INTERP_START"
	TokenInterpEnd    TokenType = "INTERP_END"

	// Symbols
	TokenLParen       TokenType = "("
	TokenRParen       TokenType = ")"
	TokenLBrace       TokenType = "{"
	TokenRBrace       TokenType = "}"
	TokenLBracket     TokenType = "["
	TokenRBracket     TokenType = "]"
	TokenPlus         TokenType = "+"
	TokenMinus        TokenType = "-"
	TokenStar         TokenType = "*"
	TokenSlash        TokenType = "/"
	TokenPercent      TokenType = "%"
	TokenPower        TokenType = "**"
	TokenPlusEqual    TokenType = "+="
	TokenMinusEqual   TokenType = "-="
	TokenStarEqual    TokenType = "*="
	TokenSlashEqual   TokenType = "/="
	TokenEqual        TokenType = "="
	TokenDoubleEqual  TokenType = "=="
	TokenNotEqual     TokenType = "!="
	TokenLT           TokenType = "<"
	TokenGT           TokenType = ">"
	TokenLE           TokenType = "<="
	TokenGE           TokenType = ">="
	TokenShiftLeft    TokenType = "<<"
	TokenShiftRight   TokenType = ">>"
	TokenAmpersand    TokenType = "&"
	TokenPipe         TokenType = "|"
	TokenCaret        TokenType = "^"
	TokenTilde        TokenType = "~"
	TokenBang         TokenType = "!"
	TokenQuestion     TokenType = "?"
	TokenNullish      TokenType = "??"
	TokenArrow        TokenType = "->"
	TokenDoubleArrow  TokenType = "=>"
	TokenComma        TokenType = ","
	TokenDot          TokenType = "."
	TokenColon        TokenType = ":"
	TokenSemicolon    TokenType = ";"
	TokenEOF          TokenType = "EOF"
)

type Token struct {
	Type   TokenType
	Lexeme string
	// Number carries the parsed value for NUMBER tokens.
	Number float64
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("[%s] '%s'", t.Type, t.Lexeme)
}
