package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClipboard(t *testing.T) {
	orig := clipboardWriteAll
	defer func() { clipboardWriteAll = orig }()

	var got string
	clipboardWriteAll = func(text string) error {
		got = text
		return nil
	}

	require.NoError(t, SystemClipboard{}.WriteAll("Hello world."))
	assert.Equal(t, "Hello world.", got)
}

func TestSystemClipboardError(t *testing.T) {
	orig := clipboardWriteAll
	defer func() { clipboardWriteAll = orig }()

	clipboardWriteAll = func(string) error {
		return errors.New("no clipboard utilities available")
	}

	err := SystemClipboard{}.WriteAll("text")
	assert.Error(t, err)
}

func TestNopClipboard(t *testing.T) {
	assert.NoError(t, NopClipboard{}.WriteAll("anything"))
}
