package application

import "fmt"

// Stage names the last step PlaceOrder reached.
type Stage string

const (
	StageReceived          Stage = "received"
	StageValidated         Stage = "validated"
	StageCustomerResolved  Stage = "customer_resolved"
	StagePersisted         Stage = "persisted"
	StageNotified          Stage = "notified"
	StageComplete          Stage = "complete"
	StageInvalid           Stage = "invalid"
	StagePersistenceFailed Stage = "persistence_failed"
)

// StageError carries the terminal stage of a failed PlaceOrder.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("place order %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
