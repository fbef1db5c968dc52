package dto

import apperrors "ferreteria/internal/errors"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message"`
	Data    interface{}                  `json:"data,omitempty"`
	Errors  []apperrors.ValidationDetail `json:"errors,omitempty"`
}

func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string, details ...apperrors.ValidationDetail) Response {
	return Response{Success: false, Message: message, Errors: details}
}
