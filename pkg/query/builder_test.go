package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectDefaultProjection(t *testing.T) {
	stmt, args, err := BuildSelect("appointments a", nil, []string{"a.id", "a.status"}, SelectSpec{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT a.id, a.status FROM appointments a", stmt)
	assert.Empty(t, args)
}

func TestBuildSelectFilterSortPage(t *testing.T) {
	stmt, args, err := BuildSelect("appointments a",
		[]string{"JOIN doctors d ON d.doctor_id = a.doctor_id"},
		[]string{"a.id"},
		SelectSpec{
			Conditions: []Condition{{Column: "a.doctor_id", Op: "=", Value: 42}},
			Sorts:      []Sort{{Column: "a.appointment_date", Desc: true}},
			Page:       &Page{Limit: 10, Number: 2},
		})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT a.id FROM appointments a JOIN doctors d ON d.doctor_id = a.doctor_id"+
			" WHERE a.doctor_id = $1 ORDER BY a.appointment_date DESC LIMIT 10 OFFSET 10",
		stmt)
	assert.Equal(t, []interface{}{42}, args)
}

func TestBuildSelectMultipleConditions(t *testing.T) {
	stmt, args, err := BuildSelect("appointments", nil, []string{"id"}, SelectSpec{
		Conditions: []Condition{
			{Column: "status", Value: "Scheduled"},
			{Column: "patient_id", Op: "=", Value: 7},
			{Column: "payment_status", Op: "IN", Value: []interface{}{"Pending", "Paid"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM appointments WHERE status = $1 AND patient_id = $2"+
			" AND payment_status IN ($3, $4)",
		stmt)
	assert.Equal(t, []interface{}{"Scheduled", 7, "Pending", "Paid"}, args)
}

func TestBuildSelectFirstPageHasZeroOffset(t *testing.T) {
	stmt, _, err := BuildSelect("users", nil, []string{"id"}, SelectSpec{
		Page: &Page{Limit: 20, Number: 1},
	})
	require.NoError(t, err)
	assert.Contains(t, stmt, "LIMIT 20 OFFSET 0")
}

func TestBuildSelectRejectsBadIdentifiers(t *testing.T) {
	cases := []SelectSpec{
		{Columns: []string{"id; DROP TABLE users"}},
		{Conditions: []Condition{{Column: "1=1 OR status", Value: "x"}}},
		{Sorts: []Sort{{Column: "date; --"}}},
	}
	for _, spec := range cases {
		_, _, err := BuildSelect("users", nil, []string{"id"}, spec)
		assert.ErrorIs(t, err, ErrBadIdentifier)
	}
}

func TestBuildSelectRejectsBadOperator(t *testing.T) {
	_, _, err := BuildSelect("users", nil, []string{"id"}, SelectSpec{
		Conditions: []Condition{{Column: "status", Op: "= 1 OR", Value: "x"}},
	})
	assert.ErrorIs(t, err, ErrBadOperator)
}

func TestBuildSelectRejectsEmptyIn(t *testing.T) {
	_, _, err := BuildSelect("users", nil, []string{"id"}, SelectSpec{
		Conditions: []Condition{{Column: "status", Op: "IN", Value: []interface{}{}}},
	})
	assert.ErrorIs(t, err, ErrEmptyIn)
}

func TestBuildInsert(t *testing.T) {
	stmt, args, err := BuildInsert("appointments",
		[]string{"appointment_date", "status", "fees"},
		[]interface{}{"2026-01-02", "Scheduled", 150.0})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO appointments (appointment_date, status, fees) VALUES ($1, $2, $3) RETURNING *",
		stmt)
	assert.Len(t, args, 3)
}

func TestBuildInsertCountMismatch(t *testing.T) {
	_, _, err := BuildInsert("appointments", []string{"a", "b"}, []interface{}{1})
	assert.Error(t, err)
}

func TestBuildSparseUpdateSkipsNilFields(t *testing.T) {
	firstName := "Jo"
	var lastName *string // unset, must not appear in the statement

	patch := new(Patch).
		Set("first_name", &firstName).
		Set("last_name", lastName).
		Set("phone_number", nil)

	stmt, args, err := BuildSparseUpdate("users", patch, "user_id", 9)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET first_name = $1 WHERE user_id = $2 RETURNING *", stmt)
	assert.Equal(t, []interface{}{"Jo", 9}, args)
}

func TestBuildSparseUpdateAllNil(t *testing.T) {
	var name *string
	patch := new(Patch).Set("first_name", name).Set("last_name", nil)

	assert.True(t, patch.IsEmpty())

	_, _, err := BuildSparseUpdate("users", patch, "user_id", 9)
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestBuildSparseUpdatePreservesEntryOrder(t *testing.T) {
	status := "Completed"
	paid := "Paid"
	patch := new(Patch).
		Set("appointment_status", &status).
		Set("payment_status", &paid)

	stmt, args, err := BuildSparseUpdate("appointments", patch, "appointment_id", 3)
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE appointments SET appointment_status = $1, payment_status = $2"+
			" WHERE appointment_id = $3 RETURNING *",
		stmt)
	assert.Equal(t, []interface{}{"Completed", "Paid", 3}, args)
}
