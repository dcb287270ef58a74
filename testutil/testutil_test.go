package testutil

import (
	"testing"

	"github.com/hupe1980/gridstore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *schema.Schema {
	return schema.MustNew("random",
		schema.Scalar("b", schema.TypeBool),
		schema.Scalar("i8", schema.TypeInt8),
		schema.Scalar("u32", schema.TypeUint32),
		schema.Scalar("f32", schema.TypeFloat32),
		schema.Scalar("f64", schema.TypeFloat64),
		schema.Char("name", 10),
		schema.Array("vec", schema.TypeInt64, 4),
	)
}

func TestRowsEncode(t *testing.T) {
	s := testSchema()
	rng := NewRNG(4711)

	for _, row := range rng.Rows(s, 200, 0) {
		require.Len(t, row, s.Len())
		for i, a := range s.Attrs() {
			buf := make([]byte, a.Size())
			require.NoError(t, a.Encode(buf, row[i]), "attribute %s", a.Name)
		}
	}
}

func TestRowsNullRate(t *testing.T) {
	s := testSchema()
	rng := NewRNG(1)

	nulls := 0
	for _, row := range rng.Rows(s, 100, 0.5) {
		for _, v := range row {
			if v == nil {
				nulls++
			}
		}
	}
	total := 100 * s.Len()
	assert.Greater(t, nulls, total/4)
	assert.Less(t, nulls, total*3/4)
}

func TestReset(t *testing.T) {
	s := testSchema()
	rng := NewRNG(42)
	first := rng.Row(s, 0.1)
	rng.Reset()
	assert.Equal(t, first, rng.Row(s, 0.1))
	assert.Equal(t, int64(42), rng.Seed())
}
