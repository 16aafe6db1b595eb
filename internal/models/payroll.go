package models

// TaxTargetType selects who a payroll tax rule applies to.
type TaxTargetType string

const (
	TaxTargetAll        TaxTargetType = "all"
	TaxTargetJob        TaxTargetType = "job"
	TaxTargetIndividual TaxTargetType = "individual"
)

// TaxTarget is a tagged selector: everyone, a job, or a set of students.
type TaxTarget struct {
	Type       TaxTargetType `json:"type"`
	JobID      int64         `json:"job_id,omitempty"`
	StudentIDs []int64       `json:"student_ids,omitempty"`
}

// Matches reports whether the target selects the given student/job pair.
func (t TaxTarget) Matches(studentID, jobID int64) bool {
	switch t.Type {
	case TaxTargetAll:
		return true
	case TaxTargetJob:
		return t.JobID == jobID
	case TaxTargetIndividual:
		for _, id := range t.StudentIDs {
			if id == studentID {
				return true
			}
		}
		return false
	}
	return false
}

// TaxRule deducts Rate percent of gross salary from matching students.
type TaxRule struct {
	ID      int64     `json:"id"`
	ClassID int64     `json:"class_id"`
	Label   string    `json:"label"`
	Rate    float64   `json:"rate"` // percent of gross
	Target  TaxTarget `json:"target"`
}

// PayrollDeduction is one applied rule's share of a salary.
type PayrollDeduction struct {
	RuleID int64   `json:"rule_id"`
	Label  string  `json:"label"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}
