package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindDecode, "decode"},
		{KindFilterUnsupported, "filter-unsupported"},
		{KindDimensionConflict, "dimension-conflict"},
		{KindResizeBounds, "resize-bounds"},
		{KindPersistence, "persistence"},
		{KindBusy, "busy"},
		{KindState, "state"},
		{KindNotFound, "not-found"},
		{KindInvalid, "invalid"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("bad header")
	err := fmt.Errorf("import: %w", E("image.Decode", KindDecode, cause))

	require.True(t, Is(err, KindDecode))
	require.False(t, Is(err, KindBusy))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "import: image.Decode [decode]: bad header", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(errors.New("x")))
	require.False(t, Is(nil, KindUnknown))
}

func TestHandlerFunc(t *testing.T) {
	var got error
	h := HandlerFunc(func(err error) { got = err })
	h.Warn(Errorf("op", KindResizeBounds, "clamped to %d", 100))
	require.True(t, Is(got, KindResizeBounds))
}
