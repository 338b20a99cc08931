package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:generate mockery --name=IndexSelector --structname=MockIndexSelector --inpackage --case=snake --testonly

func mustInterval(t *testing.T, left, right any, leftClose, rightClose bool) Interval {
	t.Helper()
	interval, err := NewInterval(left, right, leftClose, rightClose)
	require.NoError(t, err)
	return interval
}

func requireBuildError(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, target)

	var buildErr *QueryBuildError
	assert.ErrorAs(t, err, &buildErr)
}

func fieldsModel(policy IndexSelector, indexed ...string) *Model {
	fields := make([]FieldDef, 0, len(indexed)+2)
	for _, aField := range indexed {
		fields = append(fields, FieldDef{Name: aField, HasSecondaryIndex: true})
	}
	fields = append(fields,
		FieldDef{Name: "name"},
		FieldDef{Name: "email"},
	)
	return NewModel("users", policy, fields...)
}
