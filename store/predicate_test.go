package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore/config"
	"github.com/hupe1980/recstore/record"
)

func TestPredicates(t *testing.T) {
	live := node(4, true)
	free := node(9, false)

	assert.True(t, InUse(live))
	assert.False(t, InUse(free))

	r := IDRange[*record.Node](4, 8)
	assert.True(t, r(live))
	assert.False(t, r(free))

	both := All(r, InUse[*record.Node])
	assert.True(t, both(live))
	assert.False(t, both(free))
	assert.True(t, Not(both)(free))
}

func TestParseFilter(t *testing.T) {
	live, free := node(5, true), node(5, false)
	low := node(1, true)

	accepts := func(preds []Predicate[*record.Node], n *record.Node) bool {
		return All(preds...)(n)
	}

	preds, err := ParseFilter[*record.Node]("")
	require.NoError(t, err)
	assert.Empty(t, preds)

	preds, err = ParseFilter[*record.Node]("false")
	require.NoError(t, err)
	assert.Empty(t, preds)

	preds, err = ParseFilter[*record.Node](" TRUE ")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.True(t, accepts(preds, live))
	assert.False(t, accepts(preds, free))

	preds, err = ParseFilter[*record.Node]("in_use=true,min_id=2,max_id=8")
	require.NoError(t, err)
	assert.Len(t, preds, 2)
	assert.True(t, accepts(preds, live))
	assert.False(t, accepts(preds, free))
	assert.False(t, accepts(preds, low))

	preds, err = ParseFilter[*record.Node]("in_use=false,min_id=5")
	require.NoError(t, err)
	assert.True(t, accepts(preds, free))
	assert.False(t, accepts(preds, low))
}

func TestParseFilter_Invalid(t *testing.T) {
	for _, value := range []string{
		"yes",
		"in_use",
		"in_use=maybe",
		"min_id=-1",
		"max_id=x",
		"color=red",
		"min_id=9,max_id=2",
		"a=b=c",
	} {
		_, err := ParseFilter[*record.Node](value)
		require.Error(t, err, value)
		assert.ErrorIs(t, err, ErrInvalidFilterSpecification, value)

		var ferr *InvalidFilterSpecificationError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, value, ferr.Value)
		assert.Contains(t, err.Error(), "[true/false] or [key1=value1,key2=value2...]")
	}

	_, err := ParseFilter[*record.Node]("a=b=c")
	assert.ErrorIs(t, err, config.ErrInvalidFormat)
}
