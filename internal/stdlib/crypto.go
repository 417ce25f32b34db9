package stdlib

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"nova/internal/errors"
	"nova/internal/interp"
)

// RegisterCryptoFunctions installs the digest natives. Each takes a
// string and returns a lowercase hex digest.
func RegisterCryptoFunctions(i *interp.Interpreter) {
	digest := func(name string, newHash func() hash.Hash) *interp.NativeFunction {
		return &interp.NativeFunction{
			Name:  name,
			Arity: 1,
			Fn: func(args []interp.Value) (interp.Value, error) {
				s, ok := args[0].(string)
				if !ok {
					return nil, errors.Newf(errors.TypeError, "%s requires a string", name)
				}
				h := newHash()
				h.Write([]byte(s))
				return hex.EncodeToString(h.Sum(nil)), nil
			},
		}
	}

	i.Register(digest("md5", md5.New))
	i.Register(digest("sha1", sha1.New))
	i.Register(digest("sha256", sha256.New))
	i.Register(digest("sha512", sha512.New))
}
