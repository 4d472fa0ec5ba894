// Package dto provides data transfer objects for the operator API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/qrgate/internal/validation"
)

// DecodeRequest carries a payload decoded by the operator page's camera engine.
type DecodeRequest struct {
	Text string `json:"text"`
}

// Validate checks if the decode request is valid.
func (r *DecodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Printable,
			customValidation.TrimmedMaxLength(customValidation.MaxPayloadBytes),
		),
	)
}

// ScannerErrorRequest reports a camera failure on the operator page.
type ScannerErrorRequest struct {
	Message string `json:"message"`
}

// Validate checks if the scanner error request is valid.
func (r *ScannerErrorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Message,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Printable,
			validation.RuneLength(1, 256),
		),
	)
}
