package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_HeaderAndRecords(t *testing.T) {
	input := "\uFEFFName,County,Q1\n" +
		"Ada , Polk,\"line one\nline two\"\n" +
		",,\n" +
		"Grace,Story\n"

	set, err := Read(strings.NewReader(input), DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "County", "Q1"}, set.Header)
	require.Len(t, set.Records, 2)

	name, ok := set.Records[0].Get("Name")
	assert.True(t, ok)
	assert.Equal(t, "Ada ", name, "values are not trimmed")

	answer, _ := set.Records[0].Get("Q1")
	assert.Equal(t, "line one\nline two", answer)

	q1, ok := set.Records[1].Get("Q1")
	assert.True(t, ok, "short rows are padded")
	assert.Equal(t, "", q1)
}

func TestRead_Delimiters(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		input     string
	}{
		{name: "tab by name", delimiter: "tab", input: "A\tB\n1\t2\n"},
		{name: "tab escaped", delimiter: "\\t", input: "A\tB\n1\t2\n"},
		{name: "pipe", delimiter: "|", input: "A|B\n1|2\n"},
		{name: "semicolon", delimiter: "semicolon", input: "A;B\n1;2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Read(strings.NewReader(tt.input), Settings{Delimiter: tt.delimiter})
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, set.Header)
			b, _ := set.Records[0].Get("B")
			assert.Equal(t, "2", b)
		})
	}
}

func TestRead_EmptyHeaderCellsGetNames(t *testing.T) {
	set, err := Read(strings.NewReader("Name,,Q\nx,y,z\n"), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Column_2", "Q"}, set.Header)
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := Read(strings.NewReader(""), DefaultSettings())
	assert.Error(t, err)
}

func TestParse_SetsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name\nAda\n"), 0o644))

	set, err := Parse(path, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, path, set.Source)
	assert.Len(t, set.Records, 1)
}
