package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const codeX Code = "X"

func TestOf(t *testing.T) {
	require.Equal(t, codeX, Of(New(codeX)))
	require.Equal(t, codeX, Of(fmt.Errorf("wrapped: %w", New(codeX))))
	require.Equal(t, Code(""), Of(errors.New("plain")))
	require.Equal(t, Code(""), Of(nil))
}

func TestMessage(t *testing.T) {
	require.Equal(t, "X", Message(New(codeX)))
	require.Equal(t, "book gone", Message(Newf(codeX, "book gone")))
	require.Equal(t, "", Message(errors.New("plain")))
}

func TestNewf_Formats(t *testing.T) {
	err := Newf(codeX, "cannot move %s request from %s to %s", "borrow", "pending", "borrowed")
	require.Equal(t, "cannot move borrow request from pending to borrowed", err.Error())
	require.Equal(t, codeX, Of(err))
}
