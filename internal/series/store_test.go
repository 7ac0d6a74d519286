package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLookupCollapsesAbsence(t *testing.T) {
	s := NewStore()
	s.Put("2020-03-01", "NY", Fields{FieldTarget: "12", FieldRelated: ""})

	tests := []struct {
		name  string
		date  string
		item  string
		field string
		want  string
	}{
		{"present", "2020-03-01", "NY", FieldTarget, "12"},
		{"case insensitive item", "2020-03-01", "ny", FieldTarget, "12"},
		{"empty value", "2020-03-01", "NY", FieldRelated, ZeroValue},
		{"missing field", "2020-03-01", "NY", "other", ZeroValue},
		{"missing item", "2020-03-01", "CA", FieldTarget, ZeroValue},
		{"missing date", "2020-03-02", "NY", FieldTarget, ZeroValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Lookup(tt.date, tt.item, tt.field))
		})
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s := NewStore()
	s.Put("2020-03-01", "NY", Fields{FieldTarget: "1", FieldRelated: "9"})
	s.Put("2020-03-01", "ny", Fields{FieldTarget: "2"})

	assert.Equal(t, "2", s.Lookup("2020-03-01", "NY", FieldTarget))
	assert.Equal(t, ZeroValue, s.Lookup("2020-03-01", "NY", FieldRelated), "put replaces the whole cell")
	assert.Equal(t, 1, s.Len())
}

func TestStoreLookupFloat(t *testing.T) {
	s := NewStore()
	s.Put("2020-03-01", "NY", Fields{FieldTarget: "12.5", FieldRelated: "n/a"})

	v, err := s.LookupFloat("2020-03-01", "NY", FieldTarget)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, v, 1e-9)

	v, err = s.LookupFloat("2020-03-09", "NY", FieldTarget)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = s.LookupFloat("2020-03-01", "NY", FieldRelated)
	assert.Error(t, err)
}

func TestStoreDatesSorted(t *testing.T) {
	s := NewStore()
	s.Put("2020-03-03", "A", nil)
	s.Put("2020-03-01", "A", nil)
	s.Put("2020-03-02", "A", nil)
	assert.Equal(t, []string{"2020-03-01", "2020-03-02", "2020-03-03"}, s.Dates())
}

func TestItemUniverseKeepsFirstSeenOrder(t *testing.T) {
	u := NewItemUniverse()
	assert.True(t, u.Add("NY"))
	assert.True(t, u.Add("AK"))
	assert.False(t, u.Add("ny"))
	assert.True(t, u.Add("CA"))

	assert.Equal(t, []string{"NY", "AK", "CA"}, u.Items())
	assert.True(t, u.Contains("ak"))
	assert.Equal(t, 3, u.Len())

	items := u.Items()
	items[0] = "mutated"
	assert.Equal(t, "NY", u.Items()[0])
}

func TestDateRange(t *testing.T) {
	var r DateRange
	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.Days())

	d := func(s string) time.Time {
		v, err := ParseDate(s)
		require.NoError(t, err)
		return v
	}

	r.Extend(d("2020-03-05"))
	r.Extend(d("2020-03-02"))
	r.Extend(d("2020-03-04"))

	assert.Equal(t, "2020-03-02", FormatDate(r.Start))
	assert.Equal(t, "2020-03-05", FormatDate(r.End))
	assert.Len(t, r.Days(), 4)
	assert.True(t, r.Contains(d("2020-03-03")))
	assert.False(t, r.Contains(d("2020-03-06")))
	assert.Equal(t, "[2020-03-02, 2020-03-05]", r.String())
}

func TestParseCompactDate(t *testing.T) {
	got, err := ParseCompactDate("20200301")
	require.NoError(t, err)
	assert.Equal(t, "2020-03-01", FormatDate(got))
	assert.Equal(t, "20200301", CompactDate(got))

	for _, bad := range []string{"", "2020031", "2020-03-01", "2020030a", "20201301"} {
		_, err := ParseCompactDate(bad)
		assert.Error(t, err, bad)
	}
}
