package table

import (
	"fmt"
	"testing"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
	"github.com/hupe1980/gridstore/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RandomRoundTrip(t *testing.T) {
	s := schema.MustNew("random",
		schema.Scalar("id", schema.TypeUint64),
		schema.Scalar("small", schema.TypeInt8),
		schema.Char("label", 10),
		schema.Scalar("ratio", schema.TypeFloat64),
		schema.Array("vec", schema.TypeInt32, 3),
	)

	configs := []struct {
		capacity int
		layout   fragment.Layout
		parts    [][]model.AttrID
	}{
		{1, fragment.NSM, nil},
		{7, fragment.DSM, nil},
		{16, fragment.NSM, [][]model.AttrID{{4, 0}, {2}, {1, 3}}},
		{5, fragment.DSM, [][]model.AttrID{{0, 1, 2}, {3, 4}}},
	}

	for i, cfg := range configs {
		t.Run(fmt.Sprintf("%d/%s/cap%d", i, cfg.layout, cfg.capacity), func(t *testing.T) {
			ts, err := s.Copy("random")
			require.NoError(t, err)
			tbl, err := New(ts, WithCapacity(cfg.capacity), WithLayout(cfg.layout), WithPartitions(cfg.parts...))
			require.NoError(t, err)
			defer tbl.Close() //nolint:errcheck

			rng := testutil.NewRNG(int64(i))
			var rows [][]any
			for batch := 0; batch < 10; batch++ {
				b := rng.Rows(ts, 1+rng.Intn(9), 0.2)
				_, err := tbl.Insert(b...)
				require.NoError(t, err)
				rows = append(rows, b...)
			}
			require.Equal(t, model.TupleID(len(rows)), tbl.NextTupleID())

			// Every (tuple, attribute) pair is covered by exactly one grid.
			for _, tid := range rng.Perm(len(rows)) {
				for _, a := range ts.Attrs() {
					v, err := tbl.Read(model.TupleID(tid), a.ID)
					require.NoError(t, err)

					want := rows[tid][a.ID]
					if want == nil {
						assert.True(t, v.Null)
						continue
					}
					buf := make([]byte, a.Size())
					require.NoError(t, a.Encode(buf, want))
					assert.Equal(t, buf, v.Data, "tuple %d attribute %s", tid, a.Name)
				}
			}

			// Grids never overlap within a partition.
			for _, part := range tbl.Partitions() {
				seen := make(map[model.TupleID]model.GridID)
				for _, g := range tbl.VIndex().Grids(part[0]) {
					for _, tid := range g.CoveredTuples() {
						prev, dup := seen[tid]
						assert.False(t, dup, "tuple %d in grids %d and %d", tid, prev, g.ID())
						seen[tid] = g.ID()
					}
				}
				assert.Len(t, seen, len(rows))
			}
		})
	}
}
