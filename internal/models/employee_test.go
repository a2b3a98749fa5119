package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEmbeddings(t *testing.T) {
	in := [][]float32{
		{0.1, -0.5, 0.25},
		{1, 0, 0},
	}

	text, err := EncodeEmbeddings(in)
	require.NoError(t, err)

	out, err := DecodeEmbeddings(text)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeEmbeddingsEmptyString(t *testing.T) {
	out, err := DecodeEmbeddings("")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeEmbeddingsOrderPreserved(t *testing.T) {
	out, err := DecodeEmbeddings(`[[3],[1],[2]]`)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float32{3}, out[0])
	assert.Equal(t, []float32{2}, out[2])
}

func TestDecodeEmbeddingsMalformed(t *testing.T) {
	_, err := DecodeEmbeddings("[[1,")
	assert.Error(t, err)
}
