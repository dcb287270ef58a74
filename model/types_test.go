package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterval_Intersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"overlap", Interval{0, 4}, Interval{3, 5}, true},
		{"touching", Interval{0, 4}, Interval{4, 5}, false},
		{"contained", Interval{0, 10}, Interval{2, 3}, true},
		{"disjoint", Interval{0, 2}, Interval{5, 9}, false},
		{"empty outside", Interval{12, 12}, Interval{0, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestInterval_Helpers(t *testing.T) {
	iv := Span(4, 3)
	assert.Equal(t, Interval{Begin: 4, End: 7}, iv)
	assert.Equal(t, uint64(3), iv.Len())
	assert.True(t, iv.Contains(4))
	assert.True(t, iv.Contains(6))
	assert.False(t, iv.Contains(7))
	assert.Equal(t, "[4, 7)", iv.String())

	assert.Equal(t, Interval{Begin: 9, End: 10}, Point(9))
	assert.True(t, Interval{}.Empty())
	assert.Equal(t, uint64(0), Interval{Begin: 5, End: 2}.Len())
}

func TestCorruptionError(t *testing.T) {
	err := fmt.Errorf("read: %w", &CorruptionError{Table: "users", TupleID: 7, Attr: 1, AttrName: "name", Matches: 2})

	assert.ErrorIs(t, err, ErrCorrupted)

	var ce *CorruptionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Matches)
	assert.Contains(t, err.Error(), `table "users" tuple 7 attribute 1 (name) covered by 2 grids`)
}
