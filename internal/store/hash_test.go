package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("package main\n"))
	b := ContentHash([]byte("package main\n"))
	assert.Equal(t, a, b)
}

func TestContentHashDiffersOnContentChange(t *testing.T) {
	a := ContentHash([]byte("package main\n"))
	b := ContentHash([]byte("package other\n"))
	assert.NotEqual(t, a, b)
}

func TestContentHashEmptyInput(t *testing.T) {
	assert.Equal(t, ContentHash(nil), ContentHash([]byte{}))
}
