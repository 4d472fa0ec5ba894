// Package dto provides data transfer objects for the token store API.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
	customValidation "github.com/allisson/qrgate/internal/validation"
)

// InvalidateTokenRequest is the body of POST /api/tokens/invalidate.
type InvalidateTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the invalidate request is valid.
func (r *InvalidateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Printable,
			customValidation.TrimmedMaxLength(customValidation.MaxTokenLength),
		),
	)
}

// IssueTokensRequest is the body of POST /api/tokens.
type IssueTokensRequest struct {
	Count  int    `json:"count"`
	Format string `json:"format"`
	Length int    `json:"length,omitempty"`
}

// Validate checks if the issue request is valid.
func (r *IssueTokensRequest) Validate() error {
	formats := make([]string, len(domain.Formats))
	for i, f := range domain.Formats {
		formats[i] = string(f)
	}

	return validation.ValidateStruct(r,
		validation.Field(&r.Count,
			validation.Required,
			validation.Min(1),
			validation.Max(domain.MaxIssueCount),
		),
		validation.Field(&r.Format,
			validation.Required,
			customValidation.OneOf(formats...),
		),
		validation.Field(&r.Length,
			validation.When(r.Length != 0,
				validation.Min(domain.MinTokenLength),
				validation.Max(domain.MaxTokenLength),
			),
		),
	)
}

// ToIssueInput converts the request into the usecase input.
func (r *IssueTokensRequest) ToIssueInput() domain.IssueInput {
	return domain.IssueInput{
		Count:  r.Count,
		Format: domain.Format(r.Format),
		Length: r.Length,
	}
}
