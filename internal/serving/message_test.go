package serving

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTripsThroughJSON(t *testing.T) {
	msg := Message{ID: "42", Kind: KindRequest, Name: "resource:current", Payload: json.RawMessage(`{"a":1}`)}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg, decoded)
}

func TestMessageOmitsEmptyPayload(t *testing.T) {
	msg := Message{ID: "1", Kind: KindRequest, Name: "stats"}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"payload"`)
}
