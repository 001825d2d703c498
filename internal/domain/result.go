package domain

import "fmt"

// ResultStatus is the closed status set of an ExecutionResult.
type ResultStatus string

const (
	StatusOK    ResultStatus = "ok"
	StatusError ResultStatus = "error"
)

// ExecutionResult is the only shape a dispatched command returns to callers.
type ExecutionResult struct {
	Status    ResultStatus   `json:"status"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	NextSteps []string       `json:"next_steps,omitempty"`
}

// OKResult builds a successful result.
func OKResult(message string, data map[string]any, nextSteps []string) ExecutionResult {
	return ExecutionResult{Status: StatusOK, Message: message, Data: data, NextSteps: nextSteps}
}

// ErrorResult builds a failed result.
func ErrorResult(format string, args ...any) ExecutionResult {
	return ExecutionResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Succeeded reports whether the status is ok.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusOK
}

// Valid reports whether the status is one of the closed values.
func (r ExecutionResult) Valid() bool {
	return r.Status == StatusOK || r.Status == StatusError
}

// HandlerRequest is what a domain handler receives.
type HandlerRequest struct {
	UserID     string
	ActionType string
	Parameters map[string]string
}

// HandlerResponse is what a domain handler returns on success.
type HandlerResponse struct {
	Message   string
	Data      map[string]any
	NextSteps []string
}
