package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/record"
)

func TestAll_NoConditions(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2})

	all, err := q.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, all))
}

func TestWhere_Conjunction(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 1, "b": 3},
		map[string]any{"a": 2, "b": 2},
	)

	all, err := q.Where(Attrs{"a": 1}).Where(Attrs{"b": 2}).All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, record.Int(1), all[0].Get("a"))
	assert.Equal(t, record.Int(2), all[0].Get("b"))
}

func TestWhere_MultipleColumnsInOneCondition(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 1, "b": 3},
	)

	all, err := q.Where(Attrs{"a": 1, "b": 3}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(t, all))
}

func TestWhere_MissingColumnIsNull(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 1},
		map[string]any{"a": 2, "deleted_at": "yesterday"},
	)

	all, err := q.Where(Attrs{"deleted_at": nil}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, all))
}

func TestWhere_NumericEquality(t *testing.T) {
	q := newTestQuery(t, map[string]any{"price": 10}, map[string]any{"price": 10.5})

	all, err := q.Where(Attrs{"price": 10.0}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, all))
}

func TestWhere_Membership(t *testing.T) {
	recs := []map[string]any{
		{"role": "admin"},
		{"role": "owner"},
		{"role": "guest"},
		{},
	}

	testCases := []struct {
		name  string
		value any
		want  []int64
	}{
		{"slice literal", []string{"admin", "guest"}, []int64{1, 3}},
		{"record array", record.Array{record.String("owner")}, []int64{2}},
		{"In matcher", In("admin", "owner"), []int64{1, 2}},
		{"Membership struct", Membership{Values: []record.Value{record.String("guest")}}, []int64{3}},
		{"membership including null", []any{nil, "owner"}, []int64{2, 4}},
		{"empty set", []string{}, []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			all, err := newTestQuery(t, recs...).Where(Attrs{"role": tc.value}).All()
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(t, all))
		})
	}
}

func TestWhere_Range(t *testing.T) {
	recs := []map[string]any{
		{"age": 10},
		{"age": 18},
		{"age": 25},
		{"age": 30},
		{"age": nil},
		{"age": "thirty"},
	}

	testCases := []struct {
		name    string
		matcher Matcher
		want    []int64
	}{
		{"inclusive", Between(18, 30), []int64{2, 3, 4}},
		{"exclusive max", Range{Min: record.Int(18), Max: record.Int(30), ExcludeMax: true}, []int64{2, 3}},
		{"open lower bound", Between(nil, 18), []int64{1, 2}},
		{"open upper bound", Between(25, nil), []int64{3, 4}},
		{"float bounds", Between(17.5, 25.0), []int64{2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			all, err := newTestQuery(t, recs...).Where(Attrs{"age": tc.matcher}).All()
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(t, all))
		})
	}
}

func TestOr_UnionAfterWhere(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3})

	all, err := q.Where(Attrs{"a": 1}).Or(Attrs{"a": 2}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, all))
}

func TestOr_OverlapIsDeduplicated(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3})

	all, err := q.Where(Attrs{"a": In(1, 2)}).Or(Attrs{"a": In(2, 3)}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(t, all))
}

func TestOr_IdenticalRecordsKeptByIdentity(t *testing.T) {
	// Structurally identical records with different identities are distinct
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 1}, map[string]any{"a": 2})

	all, err := q.Where(Attrs{"a": 1}).Or(Attrs{"a": 1}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, all))
}

func TestOr_RefiltersInputOfPrecedingWhere(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 1, "b": 1},
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 2, "b": 3},
		map[string]any{"a": 1, "b": 3},
	)

	// where(a=1) keeps 1,2,4; where(b=1) filters that to 1;
	// or(b=3) re-filters the input of where(b=1), i.e. {1,2,4}, adding 4 only.
	all, err := q.Where(Attrs{"a": 1}).Where(Attrs{"b": 1}).Or(Attrs{"b": 3}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(t, all))
}

func TestOr_WithoutWhereUsesWholeSource(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2})

	all, err := q.Or(Attrs{"a": 2}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, all))
}

func TestOr_Chained(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3}, map[string]any{"a": 4})

	all, err := q.Where(Attrs{"a": 3}).Or(Attrs{"a": 1}).Or(Attrs{"a": 4}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 4}, ids(t, all))
}

func TestExclude(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3})

	all, err := q.Exclude(Attrs{"a": 2}).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(t, all))

	all, err = newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}).Not(Attrs{"a": In(1, 2)}).All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExpr_Predicate(t *testing.T) {
	q := newTestQuery(t, map[string]any{"age": 17}, map[string]any{"age": 21}, map[string]any{"age": 40})

	adults := Expr(func(r Row) (bool, error) {
		age, err := r.Int("age")
		return age >= 18, err
	})

	all, err := q.Where(adults).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(t, all))

	all, err = newTestQuery(t, map[string]any{"age": 17}, map[string]any{"age": 21}).Exclude(adults).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, all))
}

func TestExpr_MissingAttributeIsInvalidQuery(t *testing.T) {
	q := newTestQuery(t, map[string]any{"age": 17}, map[string]any{"name": "no age"})

	_, err := q.Where(Expr(func(r Row) (bool, error) {
		age, err := r.Int("age")
		return age > 1, err
	})).All()

	require.Error(t, err)
	assert.True(t, IsInvalidQueryError(err))
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestExpr_TypeMismatchIsInvalidQuery(t *testing.T) {
	q := newTestQuery(t, map[string]any{"age": "old"})

	_, err := q.Where(Expr(func(r Row) (bool, error) {
		c, err := r.Compare("age", 18)
		return c > 0, err
	})).Count()

	require.Error(t, err)
	assert.True(t, IsInvalidQueryError(err))
}

func TestExpr_PanicIsInvalidQuery(t *testing.T) {
	q := newTestQuery(t, map[string]any{"tags": []any{}})

	_, err := q.Where(Expr(func(r Row) (bool, error) {
		v, _ := r.Get("tags")
		return v.(record.Array)[0] != nil, nil
	})).All()

	require.Error(t, err)
	assert.True(t, IsInvalidQueryError(err))
	assert.Contains(t, err.Error(), "panic")
}

func TestExpr_CallerErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	q := newTestQuery(t, map[string]any{"a": 1})

	_, err := q.Where(Expr(func(Row) (bool, error) { return false, boom })).All()
	require.Error(t, err)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, ErrCodeInvalidQuery, qe.Code)
	assert.ErrorIs(t, err, boom)
}

func TestLimitOffset_OrderIndependent(t *testing.T) {
	recs := []map[string]any{{"n": 0}, {"n": 1}, {"n": 2}, {"n": 3}}

	a, err := newTestQuery(t, recs...).Offset(1).Limit(2).All()
	require.NoError(t, err)
	b, err := newTestQuery(t, recs...).Limit(2).Offset(1).All()
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3}, ids(t, a))
	assert.Equal(t, ids(t, a), ids(t, b))
}

func TestLimitOffset_Bounds(t *testing.T) {
	recs := []map[string]any{{"n": 0}, {"n": 1}}

	all, err := newTestQuery(t, recs...).Limit(10).All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = newTestQuery(t, recs...).Limit(0).All()
	require.NoError(t, err)
	assert.Empty(t, all)

	all, err = newTestQuery(t, recs...).Offset(5).All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOffset_RunsBeforeOrder(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 3}, map[string]any{"n": 1}, map[string]any{"n": 2})

	// offset drops the first record in source order (n=3) before ordering
	all, err := q.Order("n").Offset(1).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(t, all))
}

func TestOrder_Ascending(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 3}, map[string]any{"n": 1}, map[string]any{"n": nil}, map[string]any{"n": 2})

	all, err := q.Order("n").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 4, 1}, ids(t, all), "null sorts first")

	all, err = newTestQuery(t, map[string]any{"n": 3}, map[string]any{"n": 1}).Asc("n").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(t, all))
}

func TestOrder_LastColumnDominates(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 2, "b": 1},
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 1, "b": 1},
	)

	all, err := q.Order("a", "b").All()
	require.NoError(t, err)
	// sorted by a: 2,3,1; then stable by b: 3,1 (b=1, a order kept), 2
	assert.Equal(t, []int64{3, 1, 2}, ids(t, all))
}

func TestReverseOrder(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": 3}, map[string]any{"n": 2})

	all, err := q.ReverseOrder("n").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(t, all))

	all, err = newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": 3}).Desc("n").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(t, all))
}

func TestReverseOrder_ReversesWholeSequence(t *testing.T) {
	q := newTestQuery(t,
		map[string]any{"a": 2, "b": 1},
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 2, "b": 0},
		map[string]any{"a": 1, "b": 1},
	)

	all, err := q.Order("a").Order("b").ReverseOrder("a").All()
	require.NoError(t, err)

	// order(a):           2,4,1,3
	// order(b):           3,4,1,2
	// order(a):           4,2,3,1
	// reverse:            1,3,2,4
	assert.Equal(t, []int64{1, 3, 2, 4}, ids(t, all))

	// A per-key descending sort would keep ties in their prior order instead
	assert.NotEqual(t, []int64{3, 1, 4, 2}, ids(t, all))
}

func TestOrder_IncomparableValues(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": "one"})

	_, err := q.Order("n").All()
	require.Error(t, err)
	assert.True(t, IsTypeMismatchError(err))
}

func TestSelect_StripsColumns(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1, "b": 2, "c": 3})

	all, err := q.Select("id", "b").All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, record.Record{"id": record.Int(1), "b": record.Int(2)}, all[0])
}

func TestSelect_DoesNotTouchStore(t *testing.T) {
	c := newTestCollection(t, map[string]any{"a": 1, "b": 2})
	q := New(c, entity.DeserializeAll[record.Record](entity.RecordMapper{}))

	_, err := q.Select("a").All()
	require.NoError(t, err)

	stored, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, record.Int(2), stored.Get("b"))
}

func TestQuery_ResolvesLazily(t *testing.T) {
	c := newTestCollection(t, map[string]any{"a": 1})
	q := New(c, entity.DeserializeAll[record.Record](entity.RecordMapper{})).Where(Attrs{"a": 1})

	c.Create(record.Record{"a": record.Int(1)})

	n, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "records created after building the query are visible")
}

func TestNew_ConfigureClosures(t *testing.T) {
	c := newTestCollection(t, map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3})

	q := New(c, entity.DeserializeAll[record.Record](entity.RecordMapper{}),
		func(q *Query[record.Record]) { q.Where(Attrs{"a": In(2, 3)}) },
		nil,
		func(q *Query[record.Record]) { q.Desc("a").Limit(1) },
	)

	all, err := q.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(t, all))
}

func TestClone_IsIndependent(t *testing.T) {
	base := newTestQuery(t, map[string]any{"a": 1}, map[string]any{"a": 2}).Where(Attrs{"a": In(1, 2)})
	narrowed := base.Clone().Where(Attrs{"a": 2})

	n, err := base.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = narrowed.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFirstLastTake(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 5}, map[string]any{"n": 7}, map[string]any{"n": 6})

	first, ok, err := q.First()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Int(5), first.Get("n"))

	last, ok, err := q.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Int(6), last.Get("n"))

	taken, ok, err := q.Clone().Order("n").Take()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Int(5), taken.Get("n"))

	_, ok, err = q.Where(Attrs{"n": 100}).First()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEach(t *testing.T) {
	q := newTestQuery(t, map[string]any{"n": 1}, map[string]any{"n": 2})

	var seen []record.Value
	err := q.Each(func(rec record.Record) error {
		seen = append(seen, rec.Get("n"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.Int(1), record.Int(2)}, seen)

	stop := errors.New("stop")
	err = q.Each(func(record.Record) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestStickyErrors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(q *Query[record.Record]) *Query[record.Record]
		code  ErrorCode
	}{
		{"nil condition", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(nil) }, ErrCodeMissingCondition},
		{"empty attrs", func(q *Query[record.Record]) *Query[record.Record] { return q.Or(Attrs{}) }, ErrCodeMissingCondition},
		{"nil expr", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(Expr(nil)) }, ErrCodeMissingCondition},
		{"negative limit", func(q *Query[record.Record]) *Query[record.Record] { return q.Limit(-1) }, ErrCodeInvalidArgument},
		{"negative offset", func(q *Query[record.Record]) *Query[record.Record] { return q.Offset(-2) }, ErrCodeInvalidArgument},
		{"empty column", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(Attrs{"": 1}) }, ErrCodeInvalidArgument},
		{"unsupported literal", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(Attrs{"a": struct{}{}}) }, ErrCodeInvalidArgument},
		{"invalid matcher", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(Attrs{"a": In(make(chan int))}) }, ErrCodeInvalidArgument},
		{"incomparable range", func(q *Query[record.Record]) *Query[record.Record] { return q.Where(Attrs{"a": Between(1, "z")}) }, ErrCodeInvalidArgument},
		{"select nothing", func(q *Query[record.Record]) *Query[record.Record] { return q.Select() }, ErrCodeInvalidArgument},
		{"order empty column", func(q *Query[record.Record]) *Query[record.Record] { return q.Order("") }, ErrCodeInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.build(newTestQuery(t, map[string]any{"a": 1}))
			// Later valid calls do not clear the first error
			q.Where(Attrs{"a": 1})

			require.Error(t, q.Err())
			var qe *QueryError
			require.ErrorAs(t, q.Err(), &qe)
			assert.Equal(t, tc.code, qe.Code)

			_, err := q.All()
			assert.Equal(t, q.Err(), err)
			_, err = q.Count()
			assert.Equal(t, q.Err(), err)
		})
	}
}

func TestMissingConditionSentinel(t *testing.T) {
	q := newTestQuery(t).Where(nil)
	assert.ErrorIs(t, q.Err(), ErrMissingCondition)
}

func TestNegateAndGroupNotImplemented(t *testing.T) {
	q := newTestQuery(t)

	err := q.Negate()
	assert.True(t, IsNotImplementedError(err))
	assert.ErrorIs(t, err, ErrNotImplemented)

	err = q.Group("a")
	assert.True(t, IsNotImplementedError(err))
}

func TestNegate_IsSticky(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1})
	require.Error(t, q.Negate())

	assert.True(t, IsNotImplementedError(q.Err()))
	_, err := q.All()
	assert.True(t, IsNotImplementedError(err))
	_, err = q.Count()
	assert.True(t, IsNotImplementedError(err))
}

func TestGroup_IsSticky(t *testing.T) {
	q := newTestQuery(t, map[string]any{"a": 1})
	require.Error(t, q.Group("a"))

	_, err := q.Records()
	assert.True(t, IsNotImplementedError(err))
}

func TestDeserializerErrorPropagates(t *testing.T) {
	boom := errors.New("bad entity")
	c := newTestCollection(t, map[string]any{"a": 1})
	q := New[int](c, func([]record.Record) ([]int, error) { return nil, boom })

	_, err := q.All()
	assert.ErrorIs(t, err, boom)

	// Aggregates work on records and never call the deserializer
	n, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTypedEntities(t *testing.T) {
	type item struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	c := newTestCollection(t, map[string]any{"name": "a"}, map[string]any{"name": "b"})
	q := New(c, entity.DeserializeAll[item](entity.JSONMapper[item]{}))

	items, err := q.Where(Attrs{"name": "b"}).All()
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 2, Name: "b"}}, items)
}

func TestString_DescribesSteps(t *testing.T) {
	q := newTestQuery(t)
	assert.Equal(t, "all", q.String())

	q.Where(Attrs{"b": 2, "a": In(1, 3)}).
		Or(Attrs{"c": Between(1, nil)}).
		Exclude(Expr(func(Row) (bool, error) { return false, nil })).
		Order("a").
		Limit(5).
		Offset(1)

	assert.Equal(t, "where(a in [1,3], b = 2).or(c in 1..).exclude(expr).order(a).limit(5).offset(1)", q.String())
}
