package query

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memorm/internal/record"
)

func TestAggregates_EmptyResult(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}).Where(Attrs{"n": 2})

	n, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	exists, err := q.Exist()
	require.NoError(t, err)
	assert.False(t, exists)

	for name, fn := range map[string]func(string) (record.Value, error){
		"sum":      q.Sum,
		"average":  q.Average,
		"avg":      q.Avg,
		"max":      q.Max,
		"min":      q.Min,
		"interval": q.Interval,
	} {
		t.Run(name, func(t *testing.T) {
			v, err := fn("n")
			require.NoError(t, err)
			assert.Equal(t, record.Null{}, v)
		})
	}

	bounds, err := q.Range("n")
	require.NoError(t, err)
	assert.Equal(t, Bounds{Min: record.Null{}, Max: record.Null{}}, bounds)
}

func TestSum(t *testing.T) {
	testCases := []struct {
		name string
		recs []map[string]any
		want record.Value
	}{
		{"ints stay int", []map[string]any{{"n": 1}, {"n": 2}, {"n": 3}}, record.Int(6)},
		{"float widens", []map[string]any{{"n": 1}, {"n": 2.5}}, record.Float(3.5)},
		{"nulls skipped", []map[string]any{{"n": 4}, {"n": nil}, {}}, record.Int(4)},
		{"all null is zero", []map[string]any{{"n": nil}}, record.Int(0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := newTestQuery(t, tc.recs...).Sum("n")
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestSum_NonNumeric(t *testing.T) {
	_, err := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": "two"}).Sum("n")
	require.Error(t, err)
	assert.True(t, IsTypeMismatchError(err))

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "n", qe.Column)
}

func TestAverage(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": 2}, map[string]any{"n": nil})

	v, err := q.Average("n")
	require.NoError(t, err)
	assert.Equal(t, record.Float(1.5), v)

	v, err = newTestQuery(t, map[string]any{"other": 1}).Avg("n")
	require.NoError(t, err)
	assert.Equal(t, record.Null{}, v)
}

func TestMaxMin(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"n": 3},
		map[string]any{"n": nil},
		map[string]any{"n": 9.5},
		map[string]any{"n": -2},
	)

	hi, err := q.Max("n")
	require.NoError(t, err)
	assert.Equal(t, record.Float(9.5), hi)

	lo, err := q.Min("n")
	require.NoError(t, err)
	assert.Equal(t, record.Int(-2), lo)

	bounds, err := q.Range("n")
	require.NoError(t, err)
	assert.Equal(t, Bounds{Min: record.Int(-2), Max: record.Float(9.5)}, bounds)
}

func TestMaxMin_Strings(t *testing.T) {
	q := newTestQuery(t, map[string]any{"s": "pear"}, map[string]any{"s": "apple"}, map[string]any{"s": "zucchini"})

	hi, err := q.Max("s")
	require.NoError(t, err)
	assert.Equal(t, record.String("zucchini"), hi)

	lo, err := q.Min("s")
	require.NoError(t, err)
	assert.Equal(t, record.String("apple"), lo)
}

func TestMax_Incomparable(t *testing.T) {
	_, err := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": "x"}).Max("n")
	assert.True(t, IsTypeMismatchError(err))
}

func TestInterval(t *testing.T) {
	v, err := newTestQuery(t, map[string]any{"n": 10}, map[string]any{"n": 4}, map[string]any{"n": 7}).Interval("n")
	require.NoError(t, err)
	assert.Equal(t, record.Int(6), v)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := newTestQuery(t,
		map[string]any{"at": start},
		map[string]any{"at": start.Add(90 * time.Second)},
	)
	v, err = q.Interval("at")
	require.NoError(t, err)
	assert.Equal(t, record.Float(90), v)

	_, err = newTestQuery(t, map[string]any{"s": "a"}, map[string]any{"s": "b"}).Interval("s")
	assert.True(t, IsTypeMismatchError(err))
}

func TestAggregates_IntOverflowPromotesToFloat(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"v": int64(math.MaxInt64), "w": int64(math.MinInt64)},
		map[string]any{"v": 1, "w": int64(math.MaxInt64)},
	)

	total, err := q.Sum("v")
	require.NoError(t, err)
	assert.Equal(t, record.Float(float64(math.MaxInt64)+1), total)

	avg, err := q.Average("v")
	require.NoError(t, err)
	assert.Equal(t, record.Float((float64(math.MaxInt64)+1)/2), avg)

	interval, err := q.Interval("w")
	require.NoError(t, err)
	assert.Equal(t, record.Float(float64(math.MaxInt64)-float64(math.MinInt64)), interval)
}

func TestAggregates_RespectConditionsAndModifiers(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"kind": "a", "n": 1},
		map[string]any{"kind": "b", "n": 10},
		map[string]any{"kind": "a", "n": 5},
		map[string]any{"kind": "a", "n": 3},
	).Where(Attrs{"kind": "a"}).Desc("n").Limit(2)

	n, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := q.Sum("n")
	require.NoError(t, err)
	assert.Equal(t, record.Int(8), total)
}

func TestAggregates_StickyError(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}).Limit(-1)

	_, err := q.Sum("n")
	assert.Equal(t, q.Err(), err)
	_, err = q.Exist()
	assert.Equal(t, q.Err(), err)
	_, err = q.Range("n")
	assert.Equal(t, q.Err(), err)
}
