// internal/interp/interp.go
package interp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"nova/internal/errors"
	"nova/internal/lexer"
	"nova/internal/parser"
)

// ModuleResolver locates the source for an import path. The
// interpreter lexes, parses and runs the returned source itself.
type ModuleResolver interface {
	Resolve(path string) (source string, resolvedPath string, err error)
}

type Interpreter struct {
	globals  *Environment
	natives  map[string]*NativeFunction
	stdout   io.Writer
	stdin    *bufio.Reader
	resolver ModuleResolver

	// Import bookkeeping: loaded module objects by resolved path, and
	// an in-flight set for cycle detection.
	modules map[string]*Object
	loading map[string]bool
}

func New() *Interpreter {
	i := &Interpreter{
		globals: NewEnvironment(),
		natives: make(map[string]*NativeFunction),
		stdout:  os.Stdout,
		stdin:   bufio.NewReader(os.Stdin),
		modules: make(map[string]*Object),
		loading: make(map[string]bool),
	}
	RegisterCoreFunctions(i)
	return i
}

func (i *Interpreter) Globals() *Environment { return i.globals }

func (i *Interpreter) SetOutput(w io.Writer) { i.stdout = w }

func (i *Interpreter) SetInput(r io.Reader) { i.stdin = bufio.NewReader(r) }

func (i *Interpreter) SetResolver(r ModuleResolver) { i.resolver = r }

// Register adds a native function to the dispatch table and binds it
// in the global environment.
func (i *Interpreter) Register(fn *NativeFunction) {
	i.natives[fn.Name] = fn
	i.globals.Define(fn.Name, fn)
}

// Run executes a program in the global environment and returns the
// value of the last expression statement. Control-flow signals that
// escape to the top level are reported as errors.
func (i *Interpreter) Run(program []parser.Stmt) (Value, error) {
	var result Value
	for _, stmt := range program {
		v, err := i.execStmt(i.globals, stmt)
		if err != nil {
			return nil, signalToError(err)
		}
		if _, ok := stmt.(*parser.ExpressionStmt); ok {
			result = v
		}
	}
	return result, nil
}

func signalToError(err error) error {
	switch err.(type) {
	case returnSignal:
		return errors.New(errors.InvalidOperation, "Return outside function")
	case breakSignal:
		return errors.New(errors.InvalidOperation, "Break outside loop")
	case continueSignal:
		return errors.New(errors.InvalidOperation, "Continue outside loop")
	}
	return err
}

// --- statements ---

func (i *Interpreter) execStmt(env *Environment, stmt parser.Stmt) (Value, error) {
	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		return i.eval(env, s.Expr)

	case *parser.LetStmt:
		v, err := i.eval(env, s.Value)
		if err != nil {
			return nil, err
		}
		env.Define(s.Name, v)
		return nil, nil

	case *parser.FunctionStmt:
		env.Define(s.Name, &Function{
			Name:    s.Name,
			Params:  s.Params,
			Body:    s.Body,
			Closure: env,
			IsAsync: s.IsAsync,
		})
		return nil, nil

	case *parser.ClassStmt:
		return nil, i.defineClass(env, s)

	case *parser.ReturnStmt:
		value := Value(nil)
		if s.Value != nil {
			v, err := i.eval(env, s.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return nil, returnSignal{value: value}

	case *parser.BreakStmt:
		return nil, breakSignal{}

	case *parser.ContinueStmt:
		return nil, continueSignal{}

	case *parser.ImportStmt:
		return nil, i.importModule(env, s)
	}
	return nil, errors.Newf(errors.RuntimeError, "Unknown statement %T", stmt)
}

func (i *Interpreter) defineClass(env *Environment, s *parser.ClassStmt) error {
	class := &Class{
		Name:    s.Name,
		Methods: make(map[string]*Function),
		Statics: make(map[string]*Function),
	}

	if s.Superclass != "" {
		parent, ok := env.Get(s.Superclass)
		if !ok {
			return errors.Newf(errors.ReferenceError, "Undefined superclass: %s", s.Superclass)
		}
		superClass, ok := parent.(*Class)
		if !ok {
			return errors.New(errors.TypeError, "Superclass must be a class")
		}
		class.Superclass = superClass
	}

	makeMethod := func(m parser.MethodDecl) *Function {
		return &Function{Name: m.Name, Params: m.Params, Body: m.Body, Closure: env}
	}
	for _, m := range s.Methods {
		class.Methods[m.Name] = makeMethod(m)
	}
	for _, m := range s.Statics {
		class.Statics[m.Name] = makeMethod(m)
	}
	if s.Constructor != nil {
		class.Constructor = makeMethod(*s.Constructor)
	}

	env.Define(s.Name, class)
	return nil
}

// --- expressions ---

func (i *Interpreter) eval(env *Environment, expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		return e.Value, nil

	case *parser.Identifier:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		return nil, errors.Newf(errors.ReferenceError, "Undefined variable: %s", e.Name)

	case *parser.Binary:
		return i.evalBinary(env, e)

	case *parser.Unary:
		return i.evalUnary(env, e)

	case *parser.Block:
		var result Value
		for _, stmt := range e.Stmts {
			v, err := i.execStmt(env, stmt)
			if err != nil {
				return nil, err
			}
			if _, ok := stmt.(*parser.ExpressionStmt); ok {
				result = v
			}
		}
		return result, nil

	case *parser.If:
		cond, err := i.eval(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return i.eval(env, e.Then)
		}
		if e.Else != nil {
			return i.eval(env, e.Else)
		}
		return nil, nil

	case *parser.While:
		return i.evalWhile(env, e)

	case *parser.For:
		return i.evalFor(env, e)

	case *parser.ArrayLit:
		arr := &Array{Elements: make([]Value, 0, len(e.Elements))}
		for _, el := range e.Elements {
			v, err := i.eval(env, el)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, v)
		}
		return arr, nil

	case *parser.ObjectLit:
		obj := &Object{Fields: make(map[string]Value, len(e.Pairs))}
		for _, pair := range e.Pairs {
			v, err := i.eval(env, pair.Value)
			if err != nil {
				return nil, err
			}
			obj.Fields[pair.Key] = v
		}
		return obj, nil

	case *parser.Index:
		return i.evalIndex(env, e)

	case *parser.Property:
		obj, err := i.eval(env, e.Object)
		if err != nil {
			return nil, err
		}
		return i.getProperty(obj, e.Name)

	case *parser.Assign:
		return i.evalAssign(env, e)

	case *parser.StringInterp:
		var sb strings.Builder
		for _, part := range e.Parts {
			if part.Expr == nil {
				sb.WriteString(part.Text)
				continue
			}
			v, err := i.eval(env, part.Expr)
			if err != nil {
				return nil, err
			}
			sb.WriteString(FormatValue(v))
		}
		return sb.String(), nil

	case *parser.Call:
		return i.evalCall(env, e)

	case *parser.New:
		classVal, err := i.eval(env, e.Class)
		if err != nil {
			return nil, err
		}
		args, err := i.evalArgs(env, e.Args)
		if err != nil {
			return nil, err
		}
		return i.instantiate(env, classVal, args)

	case *parser.Lambda:
		return &Function{Params: e.Params, Body: e.Body, Closure: env}, nil

	case *parser.This:
		if v, ok := env.Get("this"); ok {
			return v, nil
		}
		return nil, errors.New(errors.InvalidOperation, "'this' used outside class method")

	case *parser.Super:
		if v, ok := env.Get("super"); ok {
			return v, nil
		}
		return nil, errors.New(errors.InvalidOperation, "'super' used outside derived class method")

	case *parser.Try:
		return i.evalTry(env, e)

	case *parser.Throw:
		v, err := i.eval(env, e.Value)
		if err != nil {
			return nil, err
		}
		msg, ok := v.(string)
		if !ok {
			msg = FormatValue(v)
		}
		terr := errors.New(errors.UserThrown, msg)
		terr.Thrown = v
		return nil, terr

	case *parser.Await:
		return i.evalAwait(env, e)
	}
	return nil, errors.Newf(errors.RuntimeError, "Unknown expression %T", expr)
}

func (i *Interpreter) evalWhile(env *Environment, e *parser.While) (Value, error) {
	var result Value
	for {
		cond, err := i.eval(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if !Truthy(cond) {
			break
		}
		v, err := i.eval(env, e.Body)
		if err != nil {
			if _, ok := err.(breakSignal); ok {
				break
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return nil, err
		}
		result = v
	}
	return result, nil
}

// evalFor binds the loop variable directly in the enclosing frame.
// A prior binding is restored afterward; without one the variable
// stays defined past the loop.
func (i *Interpreter) evalFor(env *Environment, e *parser.For) (Value, error) {
	iter, err := i.eval(env, e.Iter)
	if err != nil {
		return nil, err
	}

	var items []Value
	switch it := iter.(type) {
	case *Array:
		items = it.Elements
	case string:
		for _, r := range it {
			items = append(items, string(r))
		}
	default:
		return nil, errors.New(errors.TypeError, "Can only iterate over arrays and strings")
	}

	prev, existed := env.Get(e.Var)
	var result Value
	for _, item := range items {
		env.Define(e.Var, item)
		v, err := i.eval(env, e.Body)
		if err != nil {
			if _, ok := err.(breakSignal); ok {
				break
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return nil, err
		}
		result = v
	}
	if existed {
		env.Define(e.Var, prev)
	}
	return result, nil
}

func (i *Interpreter) evalIndex(env *Environment, e *parser.Index) (Value, error) {
	obj, err := i.eval(env, e.Object)
	if err != nil {
		return nil, err
	}
	key, err := i.eval(env, e.Key)
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *Array:
		idx, ok := key.(float64)
		if !ok {
			return nil, errors.New(errors.TypeError, "Invalid indexing operation")
		}
		n := int(idx)
		if n < 0 || n >= len(o.Elements) {
			return nil, errors.New(errors.InvalidOperation, "Array index out of bounds")
		}
		return o.Elements[n], nil
	case *Object:
		k, ok := key.(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "Invalid indexing operation")
		}
		return o.Fields[k], nil
	case string:
		idx, ok := key.(float64)
		if !ok {
			return nil, errors.New(errors.TypeError, "Invalid indexing operation")
		}
		runes := []rune(o)
		n := int(idx)
		if n < 0 || n >= len(runes) {
			return nil, errors.New(errors.InvalidOperation, "String index out of bounds")
		}
		return string(runes[n]), nil
	}
	return nil, errors.New(errors.TypeError, "Invalid indexing operation")
}

func (i *Interpreter) getProperty(obj Value, name string) (Value, error) {
	switch o := obj.(type) {
	case *Object:
		return o.Fields[name], nil
	case *Instance:
		if v, ok := o.Fields[name]; ok {
			return v, nil
		}
		if m, _ := findMethod(o.Class, name); m != nil {
			return m, nil
		}
		return nil, nil
	case *Class:
		if m, _ := findStatic(o, name); m != nil {
			return m, nil
		}
		return nil, nil
	}
	return nil, errors.Newf(errors.TypeError, "Cannot access property '%s' on %s", name, TypeName(obj))
}

func (i *Interpreter) evalAssign(env *Environment, e *parser.Assign) (Value, error) {
	val, err := i.eval(env, e.Value)
	if err != nil {
		return nil, err
	}

	switch target := e.Target.(type) {
	case *parser.Identifier:
		if !env.Set(target.Name, val) {
			return nil, errors.Newf(errors.ReferenceError, "Undefined variable: %s", target.Name)
		}
		return val, nil

	case *parser.Index:
		return nil, errors.New(errors.InvalidOperation, "Index assignment not yet implemented")

	case *parser.Property:
		obj, err := i.eval(env, target.Object)
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case *Instance:
			o.Fields[target.Name] = val
			return val, nil
		case *Object:
			o.Fields[target.Name] = val
			return val, nil
		}
		return nil, errors.Newf(errors.TypeError, "Cannot set property '%s' on %s", target.Name, TypeName(obj))
	}
	return nil, errors.New(errors.InvalidOperation, "Invalid assignment target")
}

func (i *Interpreter) evalTry(env *Environment, e *parser.Try) (Value, error) {
	result, err := i.eval(env, e.Body)

	if err != nil {
		if isSignal(err) {
			i.runFinally(env, e)
			return nil, err
		}
		if e.Catch == nil {
			i.runFinally(env, e)
			return nil, err
		}
		errObj := &Object{Fields: map[string]Value{
			"message": errorMessage(err),
			"type":    errorType(err),
		}}
		prev, existed := env.Get(e.CatchVar)
		env.Define(e.CatchVar, errObj)
		result, err = i.eval(env, e.Catch)
		if existed {
			env.Define(e.CatchVar, prev)
		}
	}

	i.runFinally(env, e)
	return result, err
}

// runFinally executes the finally block for its side effects only;
// both its value and any error it raises are discarded.
func (i *Interpreter) runFinally(env *Environment, e *parser.Try) {
	if e.Finally != nil {
		_, _ = i.eval(env, e.Finally)
	}
}

func errorMessage(err error) string {
	if ne, ok := err.(*errors.NovaError); ok {
		return ne.Message
	}
	return err.Error()
}

func errorType(err error) string {
	if ne, ok := err.(*errors.NovaError); ok {
		return string(ne.Type)
	}
	return string(errors.RuntimeError)
}

func (i *Interpreter) evalAwait(env *Environment, e *parser.Await) (Value, error) {
	v, err := i.eval(env, e.Operand)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*Promise)
	if !ok {
		return nil, errors.New(errors.TypeError, "Cannot await non-promise value")
	}
	switch p.State {
	case PromiseResolved:
		return p.Value, nil
	case PromiseRejected:
		return nil, errors.New(errors.RuntimeError, p.Message)
	default:
		return nil, errors.New(errors.RuntimeError, "Cannot await pending promise in synchronous context")
	}
}

// --- calls ---

func (i *Interpreter) evalArgs(env *Environment, exprs []parser.Expr) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := i.eval(env, a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (i *Interpreter) evalCall(env *Environment, e *parser.Call) (Value, error) {
	// obj.method(...) dispatches through the receiver
	if prop, ok := e.Callee.(*parser.Property); ok {
		recv, err := i.eval(env, prop.Object)
		if err != nil {
			return nil, err
		}
		args, err := i.evalArgs(env, e.Args)
		if err != nil {
			return nil, err
		}
		if _, isSuper := prop.Object.(*parser.Super); isSuper {
			return i.callSuperMethod(env, recv, prop.Name, args)
		}
		return i.callMethod(env, recv, prop.Name, args)
	}

	// super(...) invokes the superclass constructor on this
	if _, ok := e.Callee.(*parser.Super); ok {
		return i.callSuperConstructor(env, e)
	}

	callee, err := i.eval(env, e.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(env, e.Args)
	if err != nil {
		return nil, err
	}
	return i.callValue(env, callee, args)
}

// callValue invokes any callable. A `this` already bound in the
// calling environment is carried into user functions so helpers
// invoked inside methods keep their receiver.
func (i *Interpreter) callValue(env *Environment, callee Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *NativeFunction:
		return i.callNative(fn, args)
	case *Function:
		this, hasThis := env.Get("this")
		super, hasSuper := env.Get("super")
		frame := callFrame{}
		if hasThis {
			frame.this, frame.hasThis = this, true
		}
		if hasSuper {
			frame.super, frame.hasSuper = super, true
		}
		return i.callUser(fn, args, frame)
	case *Class:
		return i.instantiate(env, fn, args)
	}
	return nil, errors.Newf(errors.TypeError, "Cannot call non-function value: %s", TypeName(callee))
}

// callNative is the single dispatch point for built-ins: arity is
// checked here, never in the individual functions (variadic natives
// use arity -1 and validate themselves).
func (i *Interpreter) callNative(fn *NativeFunction, args []Value) (Value, error) {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, errors.Newf(errors.InvalidOperation,
			"Function '%s' expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
	}
	return fn.Fn(args)
}

type callFrame struct {
	this     Value
	hasThis  bool
	super    Value
	hasSuper bool
}

func (i *Interpreter) callUser(fn *Function, args []Value, frame callFrame) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, errors.Newf(errors.InvalidOperation,
			"Function expects %d arguments, got %d", len(fn.Params), len(args))
	}

	env := NewEnclosed(fn.Closure)
	if frame.hasThis {
		env.Define("this", frame.this)
	}
	if frame.hasSuper {
		env.Define("super", frame.super)
	}
	for idx, param := range fn.Params {
		env.Define(param, args[idx])
	}

	if fn.IsAsync {
		return i.runAsync(env, fn)
	}

	result, err := i.eval(env, fn.Body)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return result, nil
}

// runAsync executes an async body synchronously, settling the result
// into a promise: faults and thrown values reject, success resolves.
func (i *Interpreter) runAsync(env *Environment, fn *Function) (Value, error) {
	result, err := i.eval(env, fn.Body)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			return &Promise{State: PromiseResolved, Value: ret.value}, nil
		}
		if isSignal(err) {
			return nil, err
		}
		return &Promise{State: PromiseRejected, Message: errorMessage(err)}, nil
	}
	return &Promise{State: PromiseResolved, Value: result}, nil
}

func (i *Interpreter) callMethod(env *Environment, recv Value, name string, args []Value) (Value, error) {
	switch r := recv.(type) {
	case *Instance:
		// Function-valued fields shadow class methods.
		if v, ok := r.Fields[name]; ok {
			return i.callFieldValue(r, v, name, args)
		}
		method, owner := findMethod(r.Class, name)
		if method == nil {
			return nil, errors.Newf(errors.InvalidOperation, "Method '%s' not found", name)
		}
		return i.callUser(method, args, methodFrame(r, owner))

	case *Object:
		v, ok := r.Fields[name]
		if !ok {
			return nil, errors.Newf(errors.InvalidOperation, "Method '%s' not found", name)
		}
		return i.callValue(env, v, args)

	case *Class:
		method, owner := findStatic(r, name)
		if method == nil {
			return nil, errors.Newf(errors.InvalidOperation,
				"Static method '%s' not found on class '%s'", name, r.Name)
		}
		return i.callUser(method, args, callFrame{super: owner.Superclass, hasSuper: owner.Superclass != nil})
	}
	return nil, errors.Newf(errors.TypeError, "Cannot call method '%s' on %s", name, TypeName(recv))
}

func (i *Interpreter) callFieldValue(recv *Instance, v Value, name string, args []Value) (Value, error) {
	switch fn := v.(type) {
	case *Function:
		return i.callUser(fn, args, callFrame{this: recv, hasThis: true})
	case *NativeFunction:
		return i.callNative(fn, args)
	}
	return nil, errors.Newf(errors.TypeError, "Property '%s' is not callable", name)
}

func (i *Interpreter) callSuperMethod(env *Environment, superVal Value, name string, args []Value) (Value, error) {
	superClass, ok := superVal.(*Class)
	if !ok {
		return nil, errors.New(errors.InvalidOperation, "'super' used outside derived class method")
	}
	this, hasThis := env.Get("this")
	if !hasThis {
		return nil, errors.New(errors.InvalidOperation, "'this' used outside class method")
	}
	inst, ok := this.(*Instance)
	if !ok {
		return nil, errors.New(errors.TypeError, "'this' is not an instance")
	}
	method, owner := findMethod(superClass, name)
	if method == nil {
		return nil, errors.Newf(errors.InvalidOperation, "Method '%s' not found", name)
	}
	return i.callUser(method, args, methodFrame(inst, owner))
}

func (i *Interpreter) callSuperConstructor(env *Environment, e *parser.Call) (Value, error) {
	superVal, ok := env.Get("super")
	if !ok {
		return nil, errors.New(errors.InvalidOperation, "'super' used outside derived class method")
	}
	superClass, ok := superVal.(*Class)
	if !ok {
		return nil, errors.New(errors.InvalidOperation, "'super' used outside derived class method")
	}
	this, hasThis := env.Get("this")
	if !hasThis {
		return nil, errors.New(errors.InvalidOperation, "'this' used outside class method")
	}
	args, err := i.evalArgs(env, e.Args)
	if err != nil {
		return nil, err
	}
	ctor, owner := findConstructor(superClass)
	if ctor == nil {
		return nil, nil
	}
	frame := callFrame{this: this, hasThis: true}
	if owner.Superclass != nil {
		frame.super, frame.hasSuper = owner.Superclass, true
	}
	if _, err := i.callUser(ctor, args, frame); err != nil {
		if _, ok := err.(returnSignal); ok {
			return nil, nil
		}
		return nil, err
	}
	return nil, nil
}

func methodFrame(inst *Instance, owner *Class) callFrame {
	frame := callFrame{this: inst, hasThis: true}
	if owner != nil && owner.Superclass != nil {
		frame.super, frame.hasSuper = owner.Superclass, true
	}
	return frame
}

// findMethod walks the class chain and also reports the owning class
// so the callee's `super` can be bound one level up.
func findMethod(class *Class, name string) (*Function, *Class) {
	for c := class; c != nil; c = c.Superclass {
		if m, ok := c.Methods[name]; ok {
			return m, c
		}
	}
	return nil, nil
}

func findStatic(class *Class, name string) (*Function, *Class) {
	for c := class; c != nil; c = c.Superclass {
		if m, ok := c.Statics[name]; ok {
			return m, c
		}
	}
	return nil, nil
}

func findConstructor(class *Class) (*Function, *Class) {
	for c := class; c != nil; c = c.Superclass {
		if c.Constructor != nil {
			return c.Constructor, c
		}
	}
	return nil, nil
}

func (i *Interpreter) instantiate(env *Environment, classVal Value, args []Value) (Value, error) {
	class, ok := classVal.(*Class)
	if !ok {
		return nil, errors.Newf(errors.TypeError, "Cannot instantiate non-class value: %s", TypeName(classVal))
	}

	inst := &Instance{Class: class, Fields: make(map[string]Value)}
	ctor, owner := findConstructor(class)
	if ctor != nil {
		frame := callFrame{this: inst, hasThis: true}
		if owner.Superclass != nil {
			frame.super, frame.hasSuper = owner.Superclass, true
		}
		if _, err := i.callUser(ctor, args, frame); err != nil {
			// Constructor returns are ignored
			if _, ok := err.(returnSignal); !ok {
				return nil, err
			}
		}
	} else if len(args) != 0 {
		return nil, errors.Newf(errors.InvalidOperation,
			"Class '%s' has no constructor but got %d arguments", class.Name, len(args))
	}
	return inst, nil
}

// --- operators ---

func (i *Interpreter) evalBinary(env *Environment, e *parser.Binary) (Value, error) {
	// ?? short-circuits on a non-null left operand
	if e.Op == lexer.TokenNullish {
		left, err := i.eval(env, e.Left)
		if err != nil {
			return nil, err
		}
		if left != nil {
			return left, nil
		}
		return i.eval(env, e.Right)
	}

	left, err := i.eval(env, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(env, e.Right)
	if err != nil {
		return nil, err
	}
	return applyBinary(e.Op, left, right)
}

func applyBinary(op lexer.TokenType, left, right Value) (Value, error) {
	// Logical operators work on any operand pair via truthiness; both
	// sides are already evaluated.
	switch op {
	case lexer.TokenAnd:
		return Truthy(left) && Truthy(right), nil
	case lexer.TokenOr:
		return Truthy(left) || Truthy(right), nil
	case lexer.TokenDoubleEqual:
		return ValuesEqual(left, right), nil
	case lexer.TokenNotEqual:
		return !ValuesEqual(left, right), nil
	}

	if l, ok := left.(float64); ok {
		if r, ok := right.(float64); ok {
			return applyNumberOp(op, l, r)
		}
	}
	if l, ok := left.(string); ok {
		if r, ok := right.(string); ok {
			if op == lexer.TokenPlus {
				return l + r, nil
			}
			return nil, errors.Newf(errors.InvalidOperation, "Cannot apply '%s' to strings", op)
		}
	}
	if _, ok := left.(bool); ok {
		if _, ok := right.(bool); ok {
			return nil, errors.Newf(errors.InvalidOperation, "Cannot apply '%s' to booleans", op)
		}
	}

	// Mixed-type + falls back to stringified concatenation.
	if op == lexer.TokenPlus {
		return FormatValue(left) + FormatValue(right), nil
	}
	return nil, errors.Newf(errors.TypeError, "Type mismatch: cannot apply '%s' to %s and %s",
		op, TypeName(left), TypeName(right))
}

func applyNumberOp(op lexer.TokenType, l, r float64) (Value, error) {
	switch op {
	case lexer.TokenPlus:
		return l + r, nil
	case lexer.TokenMinus:
		return l - r, nil
	case lexer.TokenStar:
		return l * r, nil
	case lexer.TokenSlash:
		if r == 0 {
			return nil, errors.New(errors.DivisionByZero, "Division by zero")
		}
		return l / r, nil
	case lexer.TokenPercent:
		if r == 0 {
			return nil, errors.New(errors.DivisionByZero, "Division by zero")
		}
		return math.Mod(l, r), nil
	case lexer.TokenPower:
		return math.Pow(l, r), nil
	case lexer.TokenLT:
		return l < r, nil
	case lexer.TokenGT:
		return l > r, nil
	case lexer.TokenLE:
		return l <= r, nil
	case lexer.TokenGE:
		return l >= r, nil
	case lexer.TokenAmpersand:
		return float64(int64(l) & int64(r)), nil
	case lexer.TokenPipe:
		return float64(int64(l) | int64(r)), nil
	case lexer.TokenCaret:
		return float64(int64(l) ^ int64(r)), nil
	case lexer.TokenShiftLeft:
		return float64(int64(l) << (uint64(int64(r)) & 63)), nil
	case lexer.TokenShiftRight:
		return float64(int64(l) >> (uint64(int64(r)) & 63)), nil
	}
	return nil, errors.Newf(errors.InvalidOperation, "Cannot apply '%s' to numbers", op)
}

func (i *Interpreter) evalUnary(env *Environment, e *parser.Unary) (Value, error) {
	v, err := i.eval(env, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case lexer.TokenBang:
		return !Truthy(v), nil
	case lexer.TokenMinus:
		n, ok := v.(float64)
		if !ok {
			return nil, errors.Newf(errors.TypeError, "Cannot apply unary minus to %s", TypeName(v))
		}
		return -n, nil
	case lexer.TokenTilde:
		n, ok := v.(float64)
		if !ok {
			return nil, errors.Newf(errors.TypeError, "Cannot apply bitwise not to %s", TypeName(v))
		}
		return float64(^int64(n)), nil
	}
	return nil, errors.Newf(errors.InvalidOperation, "Unknown unary operator '%s'", e.Op)
}

// --- imports ---

// importModule loads a module in a fresh environment seeded with
// natives and binds its non-native top-level bindings as an object
// under the alias (or the sanitized path stem).
func (i *Interpreter) importModule(env *Environment, s *parser.ImportStmt) error {
	if i.resolver == nil {
		return errors.Newf(errors.ImportError, "Module not found: %s", s.Path)
	}
	source, resolved, err := i.resolver.Resolve(s.Path)
	if err != nil {
		return errors.Newf(errors.ImportError, "%v", err)
	}

	name := s.Alias
	if name == "" {
		name = sanitizeModuleName(s.Path)
	}

	if cached, ok := i.modules[resolved]; ok {
		env.Define(name, cached)
		return nil
	}
	if i.loading[resolved] {
		return errors.Newf(errors.ImportError, "Circular import: %s", s.Path)
	}
	i.loading[resolved] = true
	defer delete(i.loading, resolved)

	tokens, err := lexer.NewScannerWithFile(source, resolved).ScanTokens()
	if err != nil {
		return errors.Newf(errors.ImportError, "Module parse error: %v", err)
	}
	program, err := parser.NewParserWithSource(tokens, source, resolved).Parse()
	if err != nil {
		return errors.Newf(errors.ImportError, "Module parse error: %v", err)
	}

	moduleEnv := NewEnvironment()
	for nativeName, fn := range i.natives {
		moduleEnv.Define(nativeName, fn)
	}
	for _, stmt := range program {
		if _, err := i.execStmt(moduleEnv, stmt); err != nil {
			return signalToError(err)
		}
	}

	exports := &Object{Fields: make(map[string]Value)}
	for _, binding := range moduleEnv.Names() {
		v, _ := moduleEnv.Get(binding)
		if _, native := v.(*NativeFunction); native {
			continue
		}
		exports.Fields[binding] = v
	}

	i.modules[resolved] = exports
	env.Define(name, exports)
	return nil
}

func sanitizeModuleName(path string) string {
	name := strings.NewReplacer("/", "_", ".", "_", "\\", "_").Replace(path)
	return strings.TrimSuffix(name, "_nova")
}

// --- signals ---

// Control-flow signals ride the error channel and are intercepted at
// the construct that owns them: returns at the call boundary, break
// and continue at loop bodies. try/catch never absorbs them.
type returnSignal struct{ value Value }

func (returnSignal) Error() string { return "Return outside function" }

type breakSignal struct{}

func (breakSignal) Error() string { return "Break outside loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "Continue outside loop" }

func isSignal(err error) bool {
	switch err.(type) {
	case returnSignal, breakSignal, continueSignal:
		return true
	}
	return false
}

// Println writes a formatted value to the interpreter's output. The
// print natives and the REPL share it.
func (i *Interpreter) Println(v Value) {
	fmt.Fprintln(i.stdout, FormatValue(v))
}

// ReadLine reads one line from the interpreter's input for input().
func (i *Interpreter) ReadLine() (string, error) {
	line, err := i.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
