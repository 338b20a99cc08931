package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPredicate_Eval(t *testing.T) {
	t.Parallel()

	aDoc := Document{
		"name":   "Richard",
		"age":    35,
		"spent":  120.5,
		"budget": 100,
		"tags":   []any{"admin", "dev"},
		"role":   "dev",
		"address": map[string]any{
			"city": "London",
		},
	}

	testCases := []struct {
		Name      string
		Statement FilterStatement
		Expected  bool
	}{
		{"equal", FieldIsEqual("name", "Richard"), true},
		{"not equal", FieldIsNotEqual("name", "Richard"), false},
		{"greater or equal", FieldIs("age", Ge, 35), true},
		{"greater", FieldIs("age", Gt, 35), false},
		{"less or equal across numeric types", FieldIs("age", Le, 35.0), true},
		{"less", FieldIs("age", Lt, 36), true},
		{"missing field never matches", FieldIsEqual("email", nil), false},
		{"missing field with not equal", FieldIsNotEqual("email", "x"), false},
		{"in list", FieldIsInAny("age", 30, 35), true},
		{"not in list", FieldIsInAny("age", 30, 31), false},
		{"in empty list", FieldIsInAny("age"), false},
		{"contained in another field", FieldComparedTo("role", IsIn, "tags"), true},
		{"collection field is not a list", FieldComparedTo("role", IsIn, "name"), false},
		{"compare two fields", FieldComparedTo("spent", Gt, "budget"), true},
		{"compare to missing field", FieldComparedTo("spent", Gt, "limit"), false},
		{"between closed", FieldIsBetween("age", Interval{LeftBound: 35, RightBound: 40, LeftClose: true, RightClose: true}), true},
		{"between open", FieldIsBetween("age", Interval{LeftBound: 35, RightBound: 40}), false},
		{"between unbounded", FieldIsBetween("age", Interval{LeftBound: MinKey, RightBound: MaxKey}), true},
		{"match", FieldMatches("name", "^Ric"), true},
		{"no match", FieldMatches("name", "^ric"), false},
		{"match on a number", FieldMatches("age", "35"), false},
		{"nested field", FieldIsEqual("address.city", "London"), true},
		{
			"any of",
			AnyOf{Statements: []FilterStatement{FieldIsEqual("age", 1), FieldIsEqual("name", "Richard")}},
			true,
		},
		{
			"none of",
			AnyOf{Statements: []FilterStatement{FieldIsEqual("age", 1), FieldIsEqual("name", "John")}},
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			aPredicate, err := BuildPredicate(tc.Statement)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, aPredicate.Eval(aDoc))
		})
	}
}

func TestBuildPredicate_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name      string
		Statement FilterStatement
		Err       error
	}{
		{"invalid pattern", FieldMatches("name", "(["), ErrInvalidPattern},
		{"pattern is not a string", FieldIs("name", Match, 5), ErrInvalidOperand},
		{"IN with a literal", FieldIs("age", IsIn, 5), ErrInvalidOperand},
		{"between with a literal", FieldIs("age", Bound, 5), ErrInvalidOperand},
		{"comparison with a list", Statement{Left: NewRow("age"), Type: Eq, Right: Operand{Type: OperandList, Value: []any{1}}}, ErrInvalidOperand},
		{"unknown statement type", Statement{Left: NewRow("age"), Type: StatementType(100)}, ErrUnsupportedStatement},
		{"error inside any of", AnyOf{Statements: []FilterStatement{FieldMatches("name", "([")}}, ErrInvalidPattern},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			_, err := BuildPredicate(tc.Statement)
			requireBuildError(t, err, tc.Err)
		})
	}
}

func TestBuildPredicate_String(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name      string
		Statement FilterStatement
		Expected  string
	}{
		{"comparison", FieldIs("age", Ge, 18), "age >= 18"},
		{"contains", FieldIsInAny("age", 1, 2), "age IN [1, 2]"},
		{"contained in", FieldComparedTo("role", IsIn, "tags"), "role IN tags"},
		{"between", FieldIsBetween("age", Interval{LeftBound: 1, RightBound: 5, LeftClose: true}), "(age >= 1 AND age < 5)"},
		{"match", FieldMatches("name", "^R"), `name MATCH "^R"`},
		{
			"or",
			AnyOf{Statements: []FilterStatement{FieldIsEqual("a", 1), FieldIsEqual("b", "x")}},
			`(a = 1 OR b = "x")`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			aPredicate, err := BuildPredicate(tc.Statement)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, aPredicate.String())
		})
	}
}

func TestBuildFilters(t *testing.T) {
	t.Parallel()

	t.Run("nothing to filter", func(t *testing.T) {
		t.Parallel()

		filters, err := buildFilters(nil, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, filters)
	})

	t.Run("complicated statements come first", func(t *testing.T) {
		t.Parallel()

		filters, err := buildFilters(
			[]FilterStatement{FieldMatches("name", "^R")},
			[]Statement{FieldIsEqual("email", "r@example.com")},
			[]Statement{FieldIs("age", Gt, 18)},
		)
		require.NoError(t, err)
		require.Len(t, filters, 3)
		assert.Equal(t, `name MATCH "^R"`, filters[0].String())
		assert.Equal(t, `email = "r@example.com"`, filters[1].String())
		assert.Equal(t, "age > 18", filters[2].String())
	})

	t.Run("error is returned", func(t *testing.T) {
		t.Parallel()

		_, err := buildFilters(nil, []Statement{FieldMatches("name", "([")})
		requireBuildError(t, err, ErrInvalidPattern)
	})
}

func TestEvalAll(t *testing.T) {
	t.Parallel()

	aDoc := Document{"age": 20, "name": "Richard"}
	older, err := BuildPredicate(FieldIs("age", Gt, 18))
	require.NoError(t, err)
	named, err := BuildPredicate(FieldIsEqual("name", "John"))
	require.NoError(t, err)

	assert.True(t, EvalAll(nil, aDoc))
	assert.True(t, EvalAll([]Predicate{older}, aDoc))
	assert.False(t, EvalAll([]Predicate{older, named}, aDoc))
}
