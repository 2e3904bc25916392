package domain

// SweepStatus is the outcome of sweeping one wallet.
type SweepStatus string

const (
	SweepStatusSubmitted SweepStatus = "SUBMITTED" // transaction accepted by the node
	SweepStatusEmpty     SweepStatus = "EMPTY"     // nothing to move, no transaction built
	SweepStatusDryRun    SweepStatus = "DRY_RUN"   // built and signed, not submitted
	SweepStatusSkipped   SweepStatus = "SKIPPED"   // wallet is the destination
	SweepStatusFailed    SweepStatus = "FAILED"
)

// String returns the string representation of SweepStatus.
func (s SweepStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s SweepStatus) IsValid() bool {
	switch s {
	case SweepStatusSubmitted, SweepStatusEmpty, SweepStatusDryRun, SweepStatusSkipped, SweepStatusFailed:
		return true
	}
	return false
}

// IsFailure reports whether the status counts as a failed sweep.
func (s SweepStatus) IsFailure() bool {
	return s == SweepStatusFailed
}
