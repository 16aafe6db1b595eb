package service

import (
	"testing"

	"github.com/classbank/bank-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePayrollDeductions(t *testing.T) {
	rules := []models.TaxRule{
		{ID: 1, Label: "income tax", Rate: 10, Target: models.TaxTarget{Type: models.TaxTargetAll}},
		{ID: 2, Label: "union dues", Rate: 5, Target: models.TaxTarget{Type: models.TaxTargetJob, JobID: 7}},
		{ID: 3, Label: "fine", Rate: 20, Target: models.TaxTarget{Type: models.TaxTargetIndividual, StudentIDs: []int64{42}}},
	}

	// Student 42 on job 7 matches all three rules.
	deductions, net := EvaluatePayrollDeductions(200, 42, 7, rules)
	require.Len(t, deductions, 3)
	assert.Equal(t, 20.0, deductions[0].Amount)
	assert.Equal(t, 10.0, deductions[1].Amount)
	assert.Equal(t, 40.0, deductions[2].Amount)
	assert.Equal(t, 130.0, net)

	// Student 5 on job 3 only matches the class-wide rule.
	deductions, net = EvaluatePayrollDeductions(200, 5, 3, rules)
	require.Len(t, deductions, 1)
	assert.Equal(t, int64(1), deductions[0].RuleID)
	assert.Equal(t, 180.0, net)
}

func TestEvaluatePayrollDeductionsFloors(t *testing.T) {
	rules := []models.TaxRule{
		{ID: 1, Label: "income tax", Rate: 7, Target: models.TaxTarget{Type: models.TaxTargetAll}},
	}

	// 7% of 155 is 10.85; flooring keeps the fraction with the student.
	deductions, net := EvaluatePayrollDeductions(155, 1, 1, rules)
	require.Len(t, deductions, 1)
	assert.Equal(t, 10.0, deductions[0].Amount)
	assert.Equal(t, 145.0, net)
}

func TestEvaluatePayrollDeductionsDropsZero(t *testing.T) {
	rules := []models.TaxRule{
		{ID: 1, Label: "tiny", Rate: 1, Target: models.TaxTarget{Type: models.TaxTargetAll}},
	}

	// 1% of 50 floors to zero, so no deduction line is emitted.
	deductions, net := EvaluatePayrollDeductions(50, 1, 1, rules)
	assert.Empty(t, deductions)
	assert.Equal(t, 50.0, net)
}

func TestEvaluatePayrollDeductionsNeverNegative(t *testing.T) {
	rules := []models.TaxRule{
		{ID: 1, Label: "a", Rate: 60, Target: models.TaxTarget{Type: models.TaxTargetAll}},
		{ID: 2, Label: "b", Rate: 60, Target: models.TaxTarget{Type: models.TaxTargetAll}},
	}

	deductions, net := EvaluatePayrollDeductions(100, 1, 1, rules)
	require.Len(t, deductions, 2)
	assert.Equal(t, 60.0, deductions[0].Amount)
	// The second rule is clamped to what remains.
	assert.Equal(t, 40.0, deductions[1].Amount)
	assert.Equal(t, 0.0, net)
}

func TestTaxTargetMatches(t *testing.T) {
	assert.True(t, models.TaxTarget{Type: models.TaxTargetAll}.Matches(1, 1))
	assert.True(t, models.TaxTarget{Type: models.TaxTargetJob, JobID: 2}.Matches(1, 2))
	assert.False(t, models.TaxTarget{Type: models.TaxTargetJob, JobID: 2}.Matches(1, 3))
	assert.True(t, models.TaxTarget{Type: models.TaxTargetIndividual, StudentIDs: []int64{1, 2}}.Matches(2, 9))
	assert.False(t, models.TaxTarget{Type: models.TaxTargetIndividual, StudentIDs: []int64{1, 2}}.Matches(3, 9))
	assert.False(t, models.TaxTarget{}.Matches(1, 1))
}
