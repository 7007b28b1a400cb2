package maputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetKeyFromMap(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8125", GetKeyFromMap(nil, "addr", "127.0.0.1:8125"))
	assert.Equal(t, "127.0.0.1:8125", GetKeyFromMap(map[string]any{}, "addr", "127.0.0.1:8125"))

	settings := map[string]any{"addr": "dd-agent:8125", "sampling": nil}
	assert.Equal(t, "dd-agent:8125", GetKeyFromMap(settings, "addr", "127.0.0.1:8125"))
	assert.Equal(t, "bulksync.", GetKeyFromMap(settings, "namespace", "bulksync."))
	// Present but nil is still returned as is.
	assert.Nil(t, GetKeyFromMap(settings, "sampling", 1))
}
