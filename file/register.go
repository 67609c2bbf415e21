package file

import "github.com/gobeaver/valkit"

func init() {
	valkit.Register(IsImageName, func(options any) (valkit.Validator, error) {
		return NewIsImage(options)
	})
}
