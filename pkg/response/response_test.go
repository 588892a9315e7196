package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_OmitsError(t *testing.T) {
	b, err := json.Marshal(Success(map[string]string{"id": "p1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"p1"}}`, string(b))
}

func TestError_Envelope(t *testing.T) {
	b, err := json.Marshal(Forbidden("no valid ticket"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"FORBIDDEN","message":"no valid ticket"}}`, string(b))
}

func TestInternalError_HidesCause(t *testing.T) {
	r := InternalError()
	assert.False(t, r.Success)
	assert.Equal(t, CodeInternal, r.Error.Code)
	assert.Equal(t, "Internal server error", r.Error.Message)
}
