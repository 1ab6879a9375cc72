package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrContractViolation = errors.New("contract violation")
	ErrInvalidRequestID  = errors.New("invalid request id")
)

// ContractViolation reports middleware composed in the wrong order.
// It is raised with panic, never returned, because it is a wiring bug.
type ContractViolation struct {
	Component string
	Reason    string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Component, e.Reason)
}

func (e *ContractViolation) Unwrap() error {
	return ErrContractViolation
}

// ErrorResponse is the standard JSON error envelope returned to clients.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
