package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldWrapperShortLine(t *testing.T) {
	var sb strings.Builder
	n, err := FoldWrapper(sb.WriteString, DefaultFoldWidth)("FN:Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, len("FN:Jane Doe"), n)
	assert.Equal(t, "FN:Jane Doe\r\n", sb.String())
}

func TestFoldWrapperExample(t *testing.T) {
	var sb strings.Builder
	_, err := FoldWrapper(sb.WriteString, 8)("NOTE:Hello, world!")
	require.NoError(t, err)
	assert.Equal(t, "NOTE:Hel\r\n lo, wor\r\n ld!\r\n", sb.String())
}

func TestFoldWrapperExactWidth(t *testing.T) {
	var sb strings.Builder
	line := strings.Repeat("a", DefaultFoldWidth)
	_, err := FoldWrapper(sb.WriteString, DefaultFoldWidth)(line)
	require.NoError(t, err)
	assert.Equal(t, line+"\r\n", sb.String())

	sb.Reset()
	_, err = FoldWrapper(sb.WriteString, DefaultFoldWidth)(line + "b")
	require.NoError(t, err)
	assert.Equal(t, line+"\r\n b\r\n", sb.String())
}

func TestFoldWrapperKeepsEscapes(t *testing.T) {
	var sb strings.Builder
	// the cut at 6 would fall between `\` and `,`
	_, err := FoldWrapper(sb.WriteString, 6)(`ABCDE\,FGH`)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE\r\n \\,FGH\r\n", sb.String())
}

func TestFoldWrapperKeepsRunes(t *testing.T) {
	var sb strings.Builder
	// "é" is two octets, the cut at 5 would fall inside it
	_, err := FoldWrapper(sb.WriteString, 5)("ABCDé")
	require.NoError(t, err)
	assert.Equal(t, "ABCD\r\n é\r\n", sb.String())
}

func TestFoldWrapperMinimumWidth(t *testing.T) {
	var sb strings.Builder
	_, err := FoldWrapper(sb.WriteString, 1)("ABCDEFGHIJ")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE\r\n FGHI\r\n J\r\n", sb.String())
}

func TestFoldWrapperError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	writer := FoldWrapper(func(s string) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return len(s), nil
	}, 5)

	n, err := writer("ABCDEFGHIJKL")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, n)
}
