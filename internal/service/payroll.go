package service

import (
	"github.com/classbank/bank-engine/internal/models"
	"github.com/classbank/bank-engine/internal/utils"
)

// EvaluatePayrollDeductions applies a class's tax rules to a gross
// salary. Each rule whose target matches the student/job pair deducts
// its rate of the gross; deduction amounts floor to whole units so
// rounding favors the student. The net never goes below zero.
func EvaluatePayrollDeductions(gross float64, studentID, jobID int64, rules []models.TaxRule) ([]models.PayrollDeduction, float64) {
	var deductions []models.PayrollDeduction
	net := gross
	for _, rule := range rules {
		if !rule.Target.Matches(studentID, jobID) {
			continue
		}
		amount := utils.FloorAmount(gross * rule.Rate / 100)
		if amount <= 0 {
			continue
		}
		if amount > net {
			amount = net
		}
		deductions = append(deductions, models.PayrollDeduction{
			RuleID: rule.ID,
			Label:  rule.Label,
			Rate:   rule.Rate,
			Amount: amount,
		})
		net -= amount
	}
	return deductions, net
}
