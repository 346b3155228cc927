package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Error codes carried by ValidationError and ExternalToolError
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidNumber    = "INVALID_NUMBER"
	CodeRendererNotFound = "RENDERER_NOT_FOUND"
	CodeRendererFailed   = "RENDERER_FAILED"
	CodeRendererTimeout  = "RENDERER_TIMEOUT"
)

// NotFoundError is returned when an entity id does not resolve to a row
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// ValidationError carries a user-facing message for rejected input
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ExternalToolError reports a failure of the PDF renderer process
type ExternalToolError struct {
	Code    string
	Message string
	Err     error
}

func (e *ExternalToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// Notice levels
const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a transient message shown to the operator after an action
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func notice(level, format string, args ...interface{}) Notice {
	return Notice{Level: level, Message: fmt.Sprintf(format, args...)}
}

const invalidNumberMessage = "Invalid number format in quantity fields."

// amountScale is the number of decimal places of every decimal(12,2) column
const amountScale = 2

// parseAmount parses a money or stock quantity form value.
// invalidMessage is reported for text that is not a number; field names the value when it
// has more decimal places than the column stores, since the database would round it.
func parseAmount(value, invalidMessage, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &ValidationError{Code: CodeInvalidNumber, Message: invalidMessage}
	}
	if !d.Equal(d.Round(amountScale)) {
		return decimal.Zero, invalid("%s cannot have more than %d decimal places.", field, amountScale)
	}
	return d, nil
}

// parseDecimal parses a material quantity field
func parseDecimal(value, field string) (decimal.Decimal, error) {
	return parseAmount(value, invalidNumberMessage, field)
}

// money formats an amount the way invoices and notices print it
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
