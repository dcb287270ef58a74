package fragment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, f Fragment, rows ...[]any) {
	t.Helper()
	tp, err := f.Insert(len(rows))
	require.NoError(t, err)
	for _, row := range rows {
		field := tp.Field()
		for _, v := range row {
			require.NoError(t, field.Set(v))
			field.Next(false)
		}
		tp.Next()
	}
}

func TestPrint(t *testing.T) {
	f, err := New(testSchema(t), 4, NSM)
	require.NoError(t, err)
	fill(t, f,
		[]any{uint64(1), "Hello", true},
		[]any{uint64(2), "World", false},
		[]any{uint64(3), "Hi", true},
	)

	tp, err := f.Open(2)
	require.NoError(t, err)
	tp.Delete()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, f, 0, 0))

	want := "" +
		"+----+-------+-------+\n" +
		"| id | name  | flag  |\n" +
		"+----+-------+-------+\n" +
		"| 1  | Hello | true  |\n" +
		"| 2  | World | false |\n" +
		"+----+-------+-------+\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, f, 1, 1))
	assert.Contains(t, buf.String(), "| 2  | World | false |")
	assert.NotContains(t, buf.String(), "Hello")
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, []string{"a", "bb"}, nil))
	assert.Equal(t, "+---+----+\n| a | bb |\n+---+----+\n", buf.String())
}

func TestAppendColumn(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			f, err := New(testSchema(t), 4, layout)
			require.NoError(t, err)
			fill(t, f,
				[]any{uint64(1), "a", true},
				[]any{uint64(2), "b", false},
			)
			col := AppendColumn(nil, f, 2)
			assert.Equal(t, []byte{1, 0}, col)
		})
	}
}
