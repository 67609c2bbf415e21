package valkit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator is the contract shared by every validator in valkit.
type Validator interface {
	// IsValid reports whether value passes the validator. Failure details are
	// available from Messages until the next call.
	IsValid(value any) bool

	// Messages returns the failure messages of the last IsValid call.
	Messages() Messages

	// MessageTemplates returns the validator's fixed message catalog.
	MessageTemplates() Messages

	// Option returns the current value of a named option.
	Option(name string) (any, bool)
}

// Message is a single code/text pair.
type Message struct {
	Key  string
	Text string
}

// Messages is an ordered mapping of message code to text.
type Messages []Message

// Keys returns the message codes in order.
func (m Messages) Keys() []string {
	keys := make([]string, len(m))
	for i, msg := range m {
		keys[i] = msg.Key
	}
	return keys
}

// Get returns the text stored under key.
func (m Messages) Get(key string) (string, bool) {
	for _, msg := range m {
		if msg.Key == key {
			return msg.Text, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (m Messages) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// First returns the first message, if any.
func (m Messages) First() (Message, bool) {
	if len(m) == 0 {
		return Message{}, false
	}
	return m[0], true
}

// Len returns the number of messages.
func (m Messages) Len() int {
	return len(m)
}

// Map returns the messages as an unordered map.
func (m Messages) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, msg := range m {
		out[msg.Key] = msg.Text
	}
	return out
}

// set replaces the text under key or appends a new entry.
func (m Messages) set(key, text string) Messages {
	for i := range m {
		if m[i].Key == key {
			m[i].Text = text
			return m
		}
	}
	return append(m, Message{Key: key, Text: text})
}

func (m Messages) clone() Messages {
	if m == nil {
		return nil
	}
	out := make(Messages, len(m))
	copy(out, m)
	return out
}

// Option names handled by Messenger.
const (
	OptionMessageTemplates = "messageTemplates"
	OptionMessageLength    = "messageLength"
	OptionValueObscured    = "valueObscured"
	OptionMessages         = "messages"
)

// Messenger holds the message bookkeeping shared by validators: the template
// catalog, the messages of the last run and rendering settings.
// Validators embed a *Messenger.
type Messenger struct {
	templates     Messages
	messages      Messages
	messageLength int
	valueObscured bool
}

// NewMessenger creates a Messenger over the given template catalog.
func NewMessenger(templates ...Message) *Messenger {
	return &Messenger{
		templates:     Messages(templates).clone(),
		messageLength: -1,
	}
}

// Messages returns the failure messages of the last run.
func (m *Messenger) Messages() Messages {
	if m.messages == nil {
		return Messages{}
	}
	return m.messages.clone()
}

// MessageTemplates returns the template catalog in declaration order.
func (m *Messenger) MessageTemplates() Messages {
	return m.templates.clone()
}

// SetMessage overrides the template stored under key.
func (m *Messenger) SetMessage(key, text string) error {
	if !m.templates.Has(key) {
		return NewInvalidArgumentError("SetMessage", "no message template exists for key '%s'", key)
	}
	m.templates = m.templates.set(key, text)
	return nil
}

// SetMessageLength limits rendered messages to n characters. -1 disables the limit.
func (m *Messenger) SetMessageLength(n int) {
	m.messageLength = n
}

// MessageLength returns the rendered message limit.
func (m *Messenger) MessageLength() int {
	return m.messageLength
}

// SetValueObscured masks %value% in rendered messages.
func (m *Messenger) SetValueObscured(obscured bool) {
	m.valueObscured = obscured
}

// ValueObscured reports whether %value% is masked.
func (m *Messenger) ValueObscured() bool {
	return m.valueObscured
}

// Option returns the messenger-level options.
func (m *Messenger) Option(name string) (any, bool) {
	switch name {
	case OptionMessageTemplates:
		return m.MessageTemplates(), true
	case OptionMessageLength:
		return m.messageLength, true
	case OptionValueObscured:
		return m.valueObscured, true
	}
	return nil, false
}

// ApplyOptions consumes the messenger keys of opts.
func (m *Messenger) ApplyOptions(opts Options) error {
	if n, ok, err := opts.Int(OptionMessageLength); err != nil {
		return err
	} else if ok {
		m.SetMessageLength(n)
	}

	if b, ok, err := opts.Bool(OptionValueObscured); err != nil {
		return err
	} else if ok {
		m.SetValueObscured(b)
	}

	raw, ok := opts[OptionMessages]
	if !ok {
		return nil
	}
	overrides, ok := raw.(map[string]string)
	if !ok {
		return NewInvalidArgumentError("ApplyOptions", "option '%s' must be a map[string]string, got %T", OptionMessages, raw)
	}
	for key, text := range overrides {
		if err := m.SetMessage(key, text); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the messages of the previous run.
func (m *Messenger) Reset() {
	m.messages = nil
}

// Error records the message stored under key, rendered with value and vars.
func (m *Messenger) Error(key string, value any, vars ...string) {
	text, ok := m.templates.Get(key)
	if !ok {
		return
	}
	m.messages = m.messages.set(key, m.render(text, value, vars))
}

// render substitutes %value% and the name/value pairs of vars into text.
func (m *Messenger) render(text string, value any, vars []string) string {
	rendered := fmt.Sprint(value)
	if value == nil {
		rendered = ""
	}
	if m.valueObscured {
		rendered = strings.Repeat("*", utf8.RuneCountInString(rendered))
	}

	pairs := []string{"%value%", rendered}
	for i := 0; i+1 < len(vars); i += 2 {
		pairs = append(pairs, "%"+vars[i]+"%", vars[i+1])
	}
	text = strings.NewReplacer(pairs...).Replace(text)

	// lengths count runes so multi-byte values are never split
	if m.messageLength > -1 && utf8.RuneCountInString(text) > m.messageLength {
		runes := []rune(text)
		if m.messageLength > 3 {
			text = string(runes[:m.messageLength-3]) + "..."
		} else {
			text = string(runes[:m.messageLength])
		}
	}
	return text
}
