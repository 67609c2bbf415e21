package creditcard

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/valkit"
)

// Name is the validator's registered factory name.
const Name = "creditcard"

// Message codes
const (
	CodeChecksum       = "creditcardChecksum"
	CodeContent        = "creditcardContent"
	CodeInvalid        = "creditcardInvalid"
	CodeLength         = "creditcardLength"
	CodePrefix         = "creditcardPrefix"
	CodeService        = "creditcardService"
	CodeServiceFailure = "creditcardServiceFailure"
)

// Option keys
const (
	OptionType     = "type"
	OptionService  = "service"
	OptionRegistry = "registry"
)

func messageTemplates() []valkit.Message {
	return []valkit.Message{
		{Key: CodeChecksum, Text: "The input seems to contain an invalid checksum"},
		{Key: CodeContent, Text: "The input must contain only digits"},
		{Key: CodeInvalid, Text: "Invalid type given. String expected"},
		{Key: CodeLength, Text: "The input contains an invalid amount of digits"},
		{Key: CodePrefix, Text: "The input is not from an allowed institute"},
		{Key: CodeService, Text: "The input seems to be an invalid credit card number"},
		{Key: CodeServiceFailure, Text: "An exception has been raised while validating the input"},
	}
}

// Validator checks card numbers against issuer rules, the Luhn checksum and
// an optional verification Service.
//
// Setters are not safe to call concurrently with IsValid.
type Validator struct {
	*valkit.Messenger

	registry *Registry
	types    []Type
	service  Service
}

// New creates a credit card validator. options may be a Type, a type name,
// a list of either, or an option record with the keys "type", "service" and
// "registry" plus the shared message options. Without a type every
// registered issuer is accepted.
func New(options any) (*Validator, error) {
	v := &Validator{
		Messenger: valkit.NewMessenger(messageTemplates()...),
		registry:  defaultRegistry,
	}

	var opts valkit.Options
	switch o := options.(type) {
	case Type, string, []Type, []string:
		opts = valkit.Options{OptionType: o}
	default:
		parsed, err := valkit.ParseOptions(options)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	if raw, ok := opts[OptionRegistry]; ok {
		registry, isRegistry := raw.(*Registry)
		if !isRegistry || registry == nil {
			return nil, valkit.NewInvalidArgumentError("New", "option '%s' must be a *creditcard.Registry", OptionRegistry)
		}
		v.registry = registry
	}

	// an empty type list means every registered issuer
	if raw, ok := opts[OptionType]; ok && raw != nil {
		resolved, err := v.resolveTypes(raw)
		if err != nil {
			return nil, err
		}
		v.addResolved(resolved)
	}
	if len(v.types) == 0 {
		v.types = v.registry.Types()
	}

	if raw, ok := opts[OptionService]; ok {
		if err := v.SetService(raw); err != nil {
			return nil, err
		}
	}

	if err := v.ApplyOptions(opts); err != nil {
		return nil, err
	}
	return v, nil
}

// SetType replaces the accepted issuers. types may be a Type, a string, or a
// list of either.
func (v *Validator) SetType(types any) error {
	resolved, err := v.resolveTypes(types)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return valkit.NewInvalidArgumentError("SetType", "at least one type is required")
	}
	v.types = nil
	v.addResolved(resolved)
	return nil
}

// AddType appends issuers not yet accepted, keeping the existing order.
func (v *Validator) AddType(types any) error {
	resolved, err := v.resolveTypes(types)
	if err != nil {
		return err
	}
	v.addResolved(resolved)
	return nil
}

// Type returns the accepted issuers in order.
func (v *Validator) Type() []Type {
	return append([]Type(nil), v.types...)
}

// SetService installs the verification service. s may be a Service, a
// ServiceFunc, a func(string) bool or a func(string) (bool, error).
func (v *Validator) SetService(s any) error {
	service, err := toService(s)
	if err != nil {
		return err
	}
	v.service = service
	return nil
}

// Service returns the verification service, or nil when none is set.
func (v *Validator) Service() Service {
	return v.service
}

// Option returns the named option.
func (v *Validator) Option(name string) (any, bool) {
	switch name {
	case OptionType:
		return v.Type(), true
	case OptionService:
		return v.service, true
	case OptionRegistry:
		return v.registry, true
	}
	return v.Messenger.Option(name)
}

// IsValid reports whether value is a card number from an accepted issuer.
func (v *Validator) IsValid(value any) bool {
	valid := v.validate(value)
	valkit.Record(Name, valid, v.Messages())
	return valid
}

func (v *Validator) validate(value any) bool {
	v.Reset()

	number, ok := value.(string)
	if !ok {
		v.Error(CodeInvalid, value)
		return false
	}

	if !isDigits(number) {
		v.Error(CodeContent, number)
		return false
	}

	foundPrefix, foundLength := false, false
	for _, t := range v.types {
		rule, known := v.registry.Rule(t)
		if !known || !rule.MatchPrefix(number) {
			continue
		}
		foundPrefix = true
		if rule.AllowsLength(len(number)) {
			foundLength = true
			break
		}
	}

	if !foundPrefix {
		v.Error(CodePrefix, number)
		return false
	}
	if !foundLength {
		v.Error(CodeLength, number)
		return false
	}

	if !Luhn(number) {
		v.Error(CodeChecksum, number)
		return false
	}

	if v.service == nil {
		return true
	}

	ok, err := verify(v.service, number)
	if err != nil {
		valkit.Logger().WithFields(logrus.Fields{
			"validator": Name,
			"error":     err,
		}).Warn("credit card service failed")
		v.Error(CodeServiceFailure, number)
		return false
	}
	if !ok {
		v.Error(CodeService, number)
		return false
	}
	return true
}

func (v *Validator) resolveTypes(types any) ([]Type, error) {
	var tokens []string
	switch t := types.(type) {
	case Type:
		tokens = []string{string(t)}
	case string:
		tokens = []string{t}
	case []Type:
		for _, item := range t {
			tokens = append(tokens, string(item))
		}
	case []string:
		tokens = t
	case []any:
		for _, item := range t {
			switch s := item.(type) {
			case Type:
				tokens = append(tokens, string(s))
			case string:
				tokens = append(tokens, s)
			default:
				return nil, valkit.NewInvalidArgumentError("SetType", "invalid type given: %T", item)
			}
		}
	default:
		return nil, valkit.NewInvalidArgumentError("SetType", "invalid type given: %T", types)
	}

	resolved := make([]Type, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		resolved = append(resolved, v.registry.Resolve(token))
	}
	return resolved, nil
}

func (v *Validator) addResolved(types []Type) {
	for _, t := range types {
		if !v.accepts(t) {
			v.types = append(v.types, t)
		}
	}
}

func (v *Validator) accepts(t Type) bool {
	for _, existing := range v.types {
		if existing == t {
			return true
		}
	}
	return false
}
