package creditcard

import (
	"fmt"
	"reflect"

	"github.com/gobeaver/valkit"
)

// Service performs an additional verification of a card number, typically
// against a remote card-verification endpoint. A false result rejects the
// number; an error marks the verification itself as failed.
type Service interface {
	Verify(number string) (bool, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(number string) (bool, error)

// Verify calls f(number).
func (f ServiceFunc) Verify(number string) (bool, error) {
	return f(number)
}

// toService converts the accepted callback shapes into a Service.
func toService(v any) (Service, error) {
	switch s := v.(type) {
	case ServiceFunc:
		if s != nil {
			return s, nil
		}
	case func(string) (bool, error):
		if s != nil {
			return ServiceFunc(s), nil
		}
	case func(string) bool:
		if s != nil {
			return ServiceFunc(func(number string) (bool, error) {
				return s(number), nil
			}), nil
		}
	case Service:
		if !isNilValue(s) {
			return s, nil
		}
	}
	return nil, valkit.NewInvalidArgumentError("SetService", "Invalid callback given")
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// verify runs the service, turning a panic into an error.
func verify(s Service, number string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("credit card service panicked: %v", r)
		}
	}()
	return s.Verify(number)
}
