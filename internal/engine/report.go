package engine

// Status classifies one rule/target pair, or a whole check pass as the
// worst state found.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusMissing Status = "missing"
	StatusDrifted Status = "drifted"
	StatusBroken  Status = "broken"
)

var statusRank = map[Status]int{
	StatusHealthy: 0,
	StatusMissing: 1,
	StatusDrifted: 2,
	StatusBroken:  3,
}

// Merge returns the worse of the two states.
func (s Status) Merge(other Status) Status {
	if statusRank[other] > statusRank[s] {
		return other
	}
	return s
}

// Discrepancy describes one rule/target pair out of its desired state.
type Discrepancy struct {
	RuleID string
	ToolID string
	File   string
	Detail string
}

// CheckReport is the read-only result of a check pass.
type CheckReport struct {
	Status   Status
	Missing  []Discrepancy
	Drifted  []Discrepancy
	Broken   []Discrepancy
	Messages []string
}

func (r *CheckReport) add(status Status, d Discrepancy) {
	r.Status = r.Status.Merge(status)
	switch status {
	case StatusMissing:
		r.Missing = append(r.Missing, d)
	case StatusDrifted:
		r.Drifted = append(r.Drifted, d)
	case StatusBroken:
		r.Broken = append(r.Broken, d)
	}
}

// ApplyReport is the result of a sync or fix pass. Success stays true
// only when every pair either applied cleanly or needed nothing.
type ApplyReport struct {
	Success bool
	Actions []string
	Errors  []string
}

func (r *ApplyReport) fail(msg string) {
	r.Success = false
	r.Errors = append(r.Errors, msg)
}
