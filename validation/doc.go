// Package validation provides struct tag validation backed by the
// go-playground validator.
//
// Field names in error messages follow the struct's json tags so the
// messages line up with the wire format callers actually see:
//
//	type score struct {
//	    Score    int    `json:"score" validate:"gte=0,lte=100"`
//	    Decision string `json:"decision" validate:"oneof=PASS FAIL"`
//	}
//	err := validation.Validate(&score)
//
// Failures come back as an *errors.AppError with a per-field breakdown
// in Details, so handler code can pass them straight to the response
// layer.
package validation
