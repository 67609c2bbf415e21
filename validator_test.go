package valkit

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessenger() *Messenger {
	return NewMessenger(
		Message{Key: "tooShort", Text: "'%value%' is shorter than %min% characters"},
		Message{Key: "invalid", Text: "Invalid input"},
	)
}

func TestMessages(t *testing.T) {
	msgs := Messages{{Key: "a", Text: "first"}, {Key: "b", Text: "second"}}

	assert.Equal(t, []string{"a", "b"}, msgs.Keys())
	assert.Equal(t, 2, msgs.Len())
	assert.True(t, msgs.Has("b"))
	assert.False(t, msgs.Has("c"))

	text, ok := msgs.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "first", text)

	first, ok := msgs.First()
	assert.True(t, ok)
	assert.Equal(t, Message{Key: "a", Text: "first"}, first)

	_, ok = Messages{}.First()
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"a": "first", "b": "second"}, msgs.Map())
}

func TestMessenger_Error(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *Messenger)
		value    any
		vars     []string
		wantText string
	}{
		{
			name:     "value and vars",
			value:    "abc",
			vars:     []string{"min", "5"},
			wantText: "'abc' is shorter than 5 characters",
		},
		{
			name:     "obscured value",
			setup:    func(m *Messenger) { m.SetValueObscured(true) },
			value:    "abc",
			vars:     []string{"min", "5"},
			wantText: "'***' is shorter than 5 characters",
		},
		{
			name:     "truncated",
			setup:    func(m *Messenger) { m.SetMessageLength(12) },
			value:    "abc",
			vars:     []string{"min", "5"},
			wantText: "'abc' is ...",
		},
		{
			name:     "truncated multi-byte value",
			setup:    func(m *Messenger) { m.SetMessageLength(10) },
			value:    "日本語カードです",
			vars:     []string{"min", "5"},
			wantText: "'日本語カード...",
		},
		{
			name:     "short limit multi-byte value",
			setup:    func(m *Messenger) { m.SetMessageLength(2) },
			value:    "éa",
			wantText: "'é",
		},
		{
			name:     "obscured multi-byte value",
			setup:    func(m *Messenger) { m.SetValueObscured(true) },
			value:    "日本",
			vars:     []string{"min", "5"},
			wantText: "'**' is shorter than 5 characters",
		},
		{
			name:     "nil value",
			value:    nil,
			vars:     []string{"min", "5"},
			wantText: "'' is shorter than 5 characters",
		},
		{
			name:     "non string value",
			value:    42,
			wantText: "'42' is shorter than %min% characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMessenger()
			if tt.setup != nil {
				tt.setup(m)
			}
			m.Error("tooShort", tt.value, tt.vars...)

			text, ok := m.Messages().Get("tooShort")
			require.True(t, ok)
			assert.Equal(t, tt.wantText, text)
			assert.True(t, utf8.ValidString(text))
		})
	}
}

func TestMessenger_ResetAndOrder(t *testing.T) {
	m := testMessenger()
	assert.NotNil(t, m.Messages())
	assert.Zero(t, m.Messages().Len())

	m.Error("invalid", "x")
	m.Error("tooShort", "x")
	m.Error("unknown", "x")
	assert.Equal(t, []string{"invalid", "tooShort"}, m.Messages().Keys())

	m.Reset()
	assert.Zero(t, m.Messages().Len())
}

func TestMessenger_SetMessage(t *testing.T) {
	m := testMessenger()

	require.NoError(t, m.SetMessage("invalid", "Nope: %value%"))
	m.Error("invalid", "x")
	text, _ := m.Messages().Get("invalid")
	assert.Equal(t, "Nope: x", text)
	assert.Equal(t, []string{"tooShort", "invalid"}, m.MessageTemplates().Keys())

	err := m.SetMessage("missing", "text")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestMessenger_MessagesAreCopies(t *testing.T) {
	m := testMessenger()
	m.Error("invalid", "x")

	msgs := m.Messages()
	msgs[0].Text = "changed"
	text, _ := m.Messages().Get("invalid")
	assert.Equal(t, "Invalid input", text)

	tpl := m.MessageTemplates()
	tpl[0].Text = "changed"
	text, _ = m.MessageTemplates().Get("tooShort")
	assert.Equal(t, "'%value%' is shorter than %min% characters", text)
}

func TestMessenger_ApplyOptions(t *testing.T) {
	m := testMessenger()
	require.NoError(t, m.ApplyOptions(Options{
		OptionMessageLength: 10,
		OptionValueObscured: true,
		OptionMessages:      map[string]string{"invalid": "Bad"},
		"unrelated":         struct{}{},
	}))

	assert.Equal(t, 10, m.MessageLength())
	assert.True(t, m.ValueObscured())
	text, _ := m.MessageTemplates().Get("invalid")
	assert.Equal(t, "Bad", text)

	v, ok := m.Option(OptionMessageLength)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = m.Option("unrelated")
	assert.False(t, ok)

	tests := []struct {
		name string
		opts Options
	}{
		{"length not int", Options{OptionMessageLength: "10"}},
		{"obscured not bool", Options{OptionValueObscured: 1}},
		{"messages wrong type", Options{OptionMessages: []string{"x"}}},
		{"unknown template", Options{OptionMessages: map[string]string{"nope": "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testMessenger().ApplyOptions(tt.opts)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
		})
	}
}
