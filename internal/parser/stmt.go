// internal/parser/stmt.go
package parser

// Stmt represents a top-level statement.
type Stmt interface {
	stmtNode()
}

type ExpressionStmt struct {
	Expr Expr
}

type LetStmt struct {
	Name  string
	Value Expr
}

type FunctionStmt struct {
	Name    string
	Params  []string
	Body    Expr
	IsAsync bool
}

type ReturnStmt struct {
	Value Expr // nil for a bare return
	Line  int
}

type ImportStmt struct {
	Path  string
	Alias string // empty when no `as` clause
	Line  int
}

// MethodDecl is a method inside a class body.
type MethodDecl struct {
	Name   string
	Params []string
	Body   Expr
}

type ClassStmt struct {
	Name        string
	Superclass  string // empty when the class has no parent
	Constructor *MethodDecl
	Methods     []MethodDecl
	Statics     []MethodDecl
	Line        int
}

type BreakStmt struct {
	Line int
}

type ContinueStmt struct {
	Line int
}

func (*ExpressionStmt) stmtNode() {}
func (*LetStmt) stmtNode()        {}
func (*FunctionStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
func (*ImportStmt) stmtNode()     {}
func (*ClassStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
