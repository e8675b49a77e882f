// Package web defines common components for a web application.
package web

import (
	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns the message suffix describing a failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "currency":
		return " field must be a currency code"
	case "decimal":
		return " field must be a decimal number"
	case "hexadecimal":
		return " field must be hexadecimal"
	case "min":
		return " field must be at least " + fe.Param()
	case "max":
		return " field must be at most " + fe.Param()
	case "len":
		return " field must have length " + fe.Param()
	case "nefield":
		return " field must differ from " + fe.Param()
	}

	return " field is invalid"
}
