package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_Lookup(t *testing.T) {
	t.Parallel()

	aDoc := Document{
		"name": "Richard",
		"age":  nil,
		"address": map[string]any{
			"city": "London",
			"geo": map[string]any{
				"lat": 51.5,
			},
		},
	}

	testCases := []struct {
		Name     string
		Path     string
		Expected any
		Found    bool
	}{
		{"top level field", "name", "Richard", true},
		{"null field is found", "age", nil, true},
		{"missing field", "email", nil, false},
		{"nested field", "address.city", "London", true},
		{"deeply nested field", "address.geo.lat", 51.5, true},
		{"missing nested field", "address.zip", nil, false},
		{"path through a scalar", "name.first", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			value, ok := NewRow(tc.Path).Lookup(aDoc)
			assert.Equal(t, tc.Found, ok)
			assert.Equal(t, tc.Expected, value)
		})
	}
}

func TestRow(t *testing.T) {
	t.Parallel()

	aRow := NewRow("address.city")
	assert.Equal(t, "city", aRow.Name())
	assert.True(t, aRow.Nested())
	assert.Equal(t, "address.city", aRow.String())
	assert.True(t, aRow.Equal(NewRow("city")))
	assert.False(t, NewRow("city").Nested())
}

func TestNewInterval(t *testing.T) {
	t.Parallel()

	t.Run("valid interval", func(t *testing.T) {
		t.Parallel()

		interval, err := NewInterval(1, 10, true, false)
		require.NoError(t, err)
		assert.Equal(t, "[1, 10)", interval.String())
	})

	t.Run("single point interval", func(t *testing.T) {
		t.Parallel()

		interval, err := NewInterval("a", "a", true, true)
		require.NoError(t, err)
		assert.Equal(t, `["a", "a"]`, interval.String())
	})

	t.Run("unbounded sides", func(t *testing.T) {
		t.Parallel()

		interval, err := NewInterval(MinKey, 5, false, true)
		require.NoError(t, err)
		assert.Equal(t, "(MINVAL, 5]", interval.String())
	})

	t.Run("left greater than right", func(t *testing.T) {
		t.Parallel()

		_, err := NewInterval(10, 1, true, true)
		requireBuildError(t, err, ErrInvalidInterval)
	})
}

func TestStatement_String(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name      string
		Statement FilterStatement
		Expected  string
	}{
		{"equality", FieldIsEqual("name", "Richard"), `name = "Richard"`},
		{"inequality", FieldIsNotEqual("age", 30), "age != 30"},
		{"in list", FieldIsInAny("age", 1, 2), "age IN [1, 2]"},
		{"between", FieldIsBetween("age", Interval{LeftBound: 1, RightBound: 5, LeftClose: true}), "age BETWEEN [1, 5)"},
		{"match", FieldMatches("email", "^r"), `email MATCH "^r"`},
		{"row comparison", FieldComparedTo("spent", Gt, "budget"), "spent > budget"},
		{
			"any of",
			AnyOf{Statements: []FilterStatement{FieldIsEqual("a", 1), FieldIsEqual("b", 2)}},
			"(a = 1 OR b = 2)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.Expected, tc.Statement.String())
		})
	}
}
