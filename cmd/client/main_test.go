package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	method, params, err := request([]string{"root"})
	require.NoError(t, err)
	assert.Equal(t, "cl_getRoot", method)
	assert.Empty(t, params)

	method, params, err = request([]string{"spent", "0xab"})
	require.NoError(t, err)
	assert.Equal(t, "cl_isSpent", method)
	assert.Equal(t, []any{"0xab"}, params)

	for _, bad := range [][]string{nil, {"root", "x"}, {"spent"}, {"mint", "1"}} {
		_, _, err := request(bad)
		assert.Error(t, err, "%v", bad)
	}
}
