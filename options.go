package valkit

import (
	"iter"
	"strings"
)

// Options is the canonical option record every validator constructor reads
// from, whatever shape the caller passed in.
type Options map[string]any

// Pairs is any iterable of named option values.
type Pairs interface {
	All() iter.Seq2[string, any]
}

// ParseOptions normalises nil, Options, map[string]any and Pairs into an
// Options record. The result is a copy; callers may mutate it.
func ParseOptions(v any) (Options, error) {
	opts := Options{}
	switch src := v.(type) {
	case nil:
	case Options:
		for k, val := range src {
			opts[k] = val
		}
	case map[string]any:
		for k, val := range src {
			opts[k] = val
		}
	case Pairs:
		for k, val := range src.All() {
			opts[k] = val
		}
	default:
		return nil, NewInvalidArgumentError("ParseOptions", "invalid options to validator provided: %T", v)
	}
	return opts, nil
}

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the string stored under key.
func (o Options) String(key string) (string, bool, error) {
	raw, ok := o[key]
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, NewInvalidArgumentError("Options", "option '%s' must be a string, got %T", key, raw)
	}
	return s, true, nil
}

// Bool returns the bool stored under key.
func (o Options) Bool(key string) (bool, bool, error) {
	raw, ok := o[key]
	if !ok {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, true, NewInvalidArgumentError("Options", "option '%s' must be a bool, got %T", key, raw)
	}
	return b, true, nil
}

// Int returns the int stored under key.
func (o Options) Int(key string) (int, bool, error) {
	raw, ok := o[key]
	if !ok {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case int32:
		return int(n), true, nil
	}
	return 0, true, NewInvalidArgumentError("Options", "option '%s' must be an integer, got %T", key, raw)
}

// Strings returns the list stored under key. A single string is split on
// commas; non-string list members are skipped.
func (o Options) Strings(key string) ([]string, bool, error) {
	raw, ok := o[key]
	if !ok {
		return nil, false, nil
	}
	list, err := StringList(raw)
	if err != nil {
		return nil, true, err
	}
	return list, true, nil
}

// StringList converts a string, []string or []any into a list of strings.
func StringList(v any) ([]string, error) {
	switch src := v.(type) {
	case string:
		return SplitList(src), nil
	case []string:
		out := make([]string, len(src))
		copy(out, src)
		return out, nil
	case []any:
		out := make([]string, 0, len(src))
		for _, item := range src {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, NewInvalidArgumentError("StringList", "expected a string or list of strings, got %T", v)
}

// SplitList splits a comma separated list, trimming spaces and dropping empty entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
