package fragment

import (
	"bytes"
	"testing"

	"github.com/hupe1980/gridstore/internal/mem"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var layouts = []Layout{NSM, DSM}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("users",
		schema.Scalar("id", schema.TypeUint64),
		schema.Char("name", 16),
		schema.Scalar("flag", schema.TypeBool),
	)
	require.NoError(t, err)
	return s
}

func TestNew_Errors(t *testing.T) {
	s := testSchema(t)

	_, err := New(s, 0, NSM)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = New(nil, 4, NSM)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	empty, err := schema.New("empty")
	require.NoError(t, err)
	_, err = New(empty, 4, DSM)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = New(s, 4, Layout(9))
	assert.ErrorIs(t, err, model.ErrUnsupported)

	assert.False(t, s.Sealed())
	_, err = New(s, 4, NSM)
	require.NoError(t, err)
	assert.True(t, s.Sealed())
}

func TestFragment_InsertOpen(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			f, err := New(testSchema(t), 4, layout)
			require.NoError(t, err)
			assert.Equal(t, 4, f.Cap())
			assert.Equal(t, 0, f.Len())
			assert.Equal(t, layout, f.Layout())
			assert.Equal(t, 4*25, f.SizeBytes())

			_, err = f.Insert(0)
			assert.ErrorIs(t, err, model.ErrIllegalArgument)

			tp, err := f.Insert(3)
			require.NoError(t, err)
			assert.Equal(t, 0, tp.Row())
			assert.Equal(t, 3, f.Len())

			_, err = f.Insert(2)
			assert.ErrorIs(t, err, model.ErrNoFreeSpace)
			assert.Equal(t, 3, f.Len())

			tp, err = f.Insert(1)
			require.NoError(t, err)
			assert.Equal(t, 3, tp.Row())

			_, err = f.Insert(1)
			assert.ErrorIs(t, err, model.ErrNoFreeSpace)

			_, err = f.Open(4)
			assert.ErrorIs(t, err, model.ErrOutOfBounds)
			_, err = f.Open(-1)
			assert.ErrorIs(t, err, model.ErrOutOfBounds)

			tp, err = f.Open(2)
			require.NoError(t, err)
			assert.Equal(t, 2, tp.Row())
		})
	}
}

func TestFragment_Addressing(t *testing.T) {
	t.Run("nsm", func(t *testing.T) {
		f, err := New(testSchema(t), 4, NSM)
		require.NoError(t, err)
		_, err = f.Insert(2)
		require.NoError(t, err)

		tp, err := f.Open(1)
		require.NoError(t, err)
		field, err := tp.Seek(1)
		require.NoError(t, err)
		require.NoError(t, field.Update([]byte("World")))

		buf := f.(*nsmFragment).buf
		assert.Equal(t, []byte("World"), buf[1*25+8:1*25+13])
	})

	t.Run("dsm", func(t *testing.T) {
		f, err := New(testSchema(t), 4, DSM)
		require.NoError(t, err)
		_, err = f.Insert(2)
		require.NoError(t, err)

		tp, err := f.Open(1)
		require.NoError(t, err)
		field, err := tp.Seek(1)
		require.NoError(t, err)
		require.NoError(t, field.Update([]byte("World")))

		d := f.(*dsmFragment)
		assert.Equal(t, []byte("World"), d.cols[1][16:21])
		// The name region starts after the id region of Cap × 8 bytes.
		assert.Equal(t, []byte("World"), d.arena.Bytes()[4*8+16:4*8+21])
		assert.Len(t, d.Column(1), 2*16)
	})
}

func TestField_Cursor(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			f, err := New(testSchema(t), 4, layout)
			require.NoError(t, err)
			tp, err := f.Insert(2)
			require.NoError(t, err)

			field := tp.Field()
			require.NoError(t, field.Set(uint64(1)))
			assert.True(t, field.Next(false))
			require.NoError(t, field.Write([]byte("Hello"), true))
			assert.Equal(t, model.AttrID(2), field.Attr())
			require.NoError(t, field.Set(true))

			// End of row without auto-advance.
			assert.False(t, field.Next(false))
			assert.Equal(t, model.AttrID(2), field.Attr())
			assert.Equal(t, 0, tp.Row())

			// Auto-advance wraps to attribute 0 of the next row.
			assert.True(t, field.Next(true))
			assert.Equal(t, model.AttrID(0), field.Attr())
			assert.Equal(t, 1, tp.Row())
			require.NoError(t, field.Set(uint64(2)))

			// Last row: nothing to advance to.
			require.NoError(t, field.Seek(2))
			assert.False(t, field.Next(true))

			assert.ErrorIs(t, field.Seek(3), model.ErrOutOfBounds)

			tp, err = f.Open(0)
			require.NoError(t, err)
			field = tp.Field()
			v, err := field.Value()
			require.NoError(t, err)
			assert.Equal(t, uint64(1), v)
			field.Next(false)
			assert.Equal(t, "Hello", field.String())
			assert.Equal(t, schema.TypeChar, field.Type())
			assert.Equal(t, 16, field.Size())
			assert.Equal(t, 5, field.PrintLen())
		})
	}
}

func TestField_UpdateSizes(t *testing.T) {
	f, err := New(testSchema(t), 1, DSM)
	require.NoError(t, err)
	tp, err := f.Insert(1)
	require.NoError(t, err)

	id := tp.Field()
	assert.ErrorIs(t, id.Update([]byte{1, 2}), model.ErrIllegalArgument)
	require.NoError(t, id.Update([]byte{1, 0, 0, 0, 0, 0, 0, 0}))

	name, err := tp.Seek(1)
	require.NoError(t, err)
	require.NoError(t, name.Update([]byte("a-long-name")))
	require.NoError(t, name.Update([]byte("ab")))
	assert.Equal(t, append([]byte("ab"), make([]byte, 14)...), name.Read())
	assert.ErrorIs(t, name.Update(bytes.Repeat([]byte{'x'}, 17)), model.ErrIllegalArgument)
}

func TestField_Null(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			f, err := New(testSchema(t), 4, layout)
			require.NoError(t, err)
			tp, err := f.Insert(3)
			require.NoError(t, err)

			name, err := tp.Seek(1)
			require.NoError(t, err)
			name.SetNull()
			assert.True(t, name.IsNull())
			assert.Equal(t, NullString, name.String())

			// Writing a value keeps the flag.
			require.NoError(t, name.Update([]byte("x")))
			assert.True(t, name.IsNull())
			name.ClearNull()
			assert.False(t, name.IsNull())
			assert.False(t, tp.IsNull(0))

			// Row-wide null advances the tuplet.
			tp.SetNull()
			assert.Equal(t, 1, tp.Row())
			assert.True(t, f.Marks().IsNull(0, 0))
			assert.True(t, f.Marks().IsNull(0, 2))
			assert.False(t, f.Marks().IsNull(1, 0))
			assert.Equal(t, uint64(3), f.Marks().NullCount())
		})
	}
}

func TestTuplet_UpdateAndBytes(t *testing.T) {
	s := testSchema(t)
	row := make([]byte, s.RowSize())
	for i, a := range s.Attrs() {
		off := s.Offset(model.AttrID(i))
		var v any
		switch a.Name {
		case "id":
			v = uint64(7)
		case "name":
			v = "seven"
		default:
			v = true
		}
		require.NoError(t, a.Encode(row[off:off+a.Size()], v))
	}

	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			f, err := New(s, 2, layout)
			require.NoError(t, err)
			tp, err := f.Insert(2)
			require.NoError(t, err)

			require.NoError(t, tp.Update(row))
			assert.Equal(t, 1, tp.Row())
			require.NoError(t, tp.Update(row))
			assert.Equal(t, 1, tp.Row(), "stays at the last row")

			assert.ErrorIs(t, tp.Update(row[:3]), model.ErrIllegalArgument)

			first, err := f.Open(0)
			require.NoError(t, err)
			assert.Equal(t, row, first.Bytes())
			assert.False(t, first.Next() && first.Next())
		})
	}
}

func TestTuplet_Delete(t *testing.T) {
	f, err := New(testSchema(t), 4, NSM)
	require.NoError(t, err)
	tp, err := f.Insert(2)
	require.NoError(t, err)

	assert.False(t, tp.Deleted())
	tp.Delete()
	assert.True(t, tp.Deleted())
	assert.Equal(t, uint64(1), f.Marks().DeletedCount())
	assert.Equal(t, 2, f.Len())
}

func TestFragment_Dispose(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 150})

	f, err := New(testSchema(t), 4, NSM, WithResourceController(rc), WithAllocator(mem.Anonymous()))
	require.NoError(t, err)
	assert.Equal(t, int64(100), rc.MemoryUsage())

	_, err = New(testSchema(t), 4, DSM, WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(100), rc.MemoryUsage())

	require.NoError(t, f.Dispose())
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.ErrorIs(t, f.Dispose(), model.ErrIllegalArgument)

	_, err = f.Insert(1)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)
	_, err = f.Open(0)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("dsm")
	require.NoError(t, err)
	assert.Equal(t, DSM, l)

	_, err = ParseLayout("pax")
	assert.ErrorIs(t, err, model.ErrUnsupported)
	assert.Equal(t, "layout(9)", Layout(9).String())
}
