// internal/parser/ast.go
package parser

import "nova/internal/lexer"

// Expr is the interface implemented by every expression node.
type Expr interface {
	exprNode()
}

// Literal holds a constant: float64, string, bool, or nil.
type Literal struct {
	Value interface{}
}

type Identifier struct {
	Name   string
	Line   int
	Column int
}

type Binary struct {
	Left  Expr
	Op    lexer.TokenType
	Right Expr
	Line  int
}

type Unary struct {
	Op      lexer.TokenType
	Operand Expr
}

type Call struct {
	Callee Expr
	Args   []Expr
	Line   int
	Column int
}

// New instantiates a class: new Point(1, 2)
type New struct {
	Class Expr
	Args  []Expr
}

// Block is a braced statement sequence. It does not open a scope and
// evaluates to the value of its last statement.
type Block struct {
	Stmts []Stmt
}

// If is an expression; branches are Block or nested If nodes.
type If struct {
	Cond Expr
	Then Expr
	Else Expr // nil when absent
}

type While struct {
	Cond Expr
	Body Expr
}

// For iterates arrays and strings, binding Var in the enclosing
// environment for the duration of the loop.
type For struct {
	Var  string
	Iter Expr
	Body Expr
}

type ArrayLit struct {
	Elements []Expr
}

type ObjectPair struct {
	Key   string
	Value Expr
}

type ObjectLit struct {
	Pairs []ObjectPair
}

type Index struct {
	Object Expr
	Key    Expr
	Line   int
}

type Property struct {
	Object Expr
	Name   string
	Line   int
}

// Assign covers the three supported target shapes: Identifier,
// Property, and Index (the last one faults at runtime).
type Assign struct {
	Target Expr
	Value  Expr
}

// InterpPart is one piece of an interpolated string: either a literal
// Text segment or an embedded expression.
type InterpPart struct {
	Text string
	Expr Expr // nil for text parts
}

type StringInterp struct {
	Parts []InterpPart
}

type Try struct {
	Body     Expr
	CatchVar string
	Catch    Expr // nil when no catch clause
	Finally  Expr // nil when no finally clause
}

type Throw struct {
	Value Expr
	Line  int
}

type Lambda struct {
	Params []string
	Body   Expr
}

type This struct {
	Line int
}

type Super struct {
	Line int
}

type Await struct {
	Operand Expr
}

func (*Literal) exprNode()      {}
func (*Identifier) exprNode()   {}
func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Call) exprNode()         {}
func (*New) exprNode()          {}
func (*Block) exprNode()        {}
func (*If) exprNode()           {}
func (*While) exprNode()        {}
func (*For) exprNode()          {}
func (*ArrayLit) exprNode()     {}
func (*ObjectLit) exprNode()    {}
func (*Index) exprNode()        {}
func (*Property) exprNode()     {}
func (*Assign) exprNode()       {}
func (*StringInterp) exprNode() {}
func (*Try) exprNode()          {}
func (*Throw) exprNode()        {}
func (*Lambda) exprNode()       {}
func (*This) exprNode()         {}
func (*Super) exprNode()        {}
func (*Await) exprNode()        {}
