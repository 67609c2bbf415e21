package creditcard

import "github.com/gobeaver/valkit"

func init() {
	valkit.Register(Name, func(options any) (valkit.Validator, error) {
		return New(options)
	})
}
