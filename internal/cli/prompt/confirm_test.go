package prompt

import (
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmWithForce(t *testing.T) {
	ok, err := ConfirmWithForce("Delete item 'docs'?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(ErrAborted))
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(fmt.Errorf("prompt: %w", ErrAborted)))
	assert.False(t, IsAborted(promptui.ErrAbort))
	assert.False(t, IsAborted(nil))
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, isYes(s), s)
	}
	for _, s := range []string{"", "n", "no", "yep"} {
		assert.False(t, isYes(s), s)
	}
}

func TestMatchWord(t *testing.T) {
	validate := matchWord("repair")
	assert.NoError(t, validate("repair"))
	assert.Error(t, validate("Repair"))
	assert.Error(t, validate(""))
}
