// Package stdlib adds the optional native function groups on top of
// the interpreter's core surface.
package stdlib

import "nova/internal/interp"

// RegisterAll installs every stdlib group. The CLI and REPL call this
// once per interpreter.
func RegisterAll(i *interp.Interpreter) {
	RegisterRandomFunctions(i)
	RegisterCryptoFunctions(i)
	RegisterDatetimeFunctions(i)
	RegisterCollectionFunctions(i)
	RegisterDatabaseFunctions(i)
	RegisterNetworkFunctions(i)
}
