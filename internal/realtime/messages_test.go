package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCallAction(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		valid   bool
	}{
		{"unknown action", `{"action":"dance"}`, false},
		{"toggle without status", `{"action":"toggle_mic"}`, false},
		{"toggle with status", `{"action":"toggle_mic","status":true}`, true},
		{"share screen with status", `{"action":"share_screen","status":false}`, true},
		{"quality outside enum", `{"action":"set_quality","quality":"ultra"}`, false},
		{"quality in enum", `{"action":"set_quality","quality":"high"}`, true},
		{"offer without payload", `{"action":"offer"}`, false},
		{"offer with payload", `{"action":"offer","offer":{"sdp":"v=0"}}`, true},
		{"answer with payload", `{"action":"answer","answer":{"sdp":"v=0"}}`, true},
		{"candidate with payload", `{"action":"ice_candidate","candidate":{"mid":"0"}}`, true},
		{"end call", `{"action":"end_call"}`, true},
		{"not json", `{{{`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCallAction([]byte(tc.payload))
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformed)
			}
		})
	}
}

func TestDecodeChatMessage(t *testing.T) {
	content, err := DecodeChatMessage([]byte(`{"content":"hi"}`))
	assert.NoError(t, err)
	assert.Equal(t, "hi", content)

	content, err = DecodeChatMessage([]byte(`{"content":""}`))
	assert.NoError(t, err)
	assert.Equal(t, "", content)

	_, err = DecodeChatMessage([]byte(`{"body":"hi"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeChatMessage([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}
