package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderUnmarshal(t *testing.T) {
	enc := NewEncoder()
	in := "  ```json\n{\"a\":1}\n```  \n"

	var got string
	require.NoError(t, enc.Unmarshal([]byte(in), &got))
	assert.Equal(t, in, got)

	var n int
	assert.Error(t, enc.Unmarshal([]byte(in), &n))
	assert.Equal(t, "Continue.", enc.Continuation())
	assert.Nil(t, enc.Schema())
}
