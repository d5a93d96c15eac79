package http

import (
	"net/http"

	"github.com/kmarankit/Money-Stories-Final/internal/dataprocessing"
	apierrors "github.com/kmarankit/Money-Stories-Final/internal/errors"
	"github.com/kmarankit/Money-Stories-Final/internal/extraction"
	"github.com/kmarankit/Money-Stories-Final/internal/services"
	"github.com/kmarankit/Money-Stories-Final/internal/validation"
)

// ErrorMappings translates domain sentinels into problem responses. Order
// matters: the first match wins.
func ErrorMappings() []apierrors.ErrorMapping {
	return []apierrors.ErrorMapping{
		// Upload rejections report the validator's own message.
		{Target: validation.ErrUnsupportedType, Status: http.StatusBadRequest, Type: apierrors.TypeUnsupportedFile, Title: "Bad Request"},
		{Target: validation.ErrFileTooLarge, Status: http.StatusBadRequest, Type: apierrors.TypePayloadTooLarge, Title: "Bad Request"},
		{Target: validation.ErrEmptyFile, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Bad Request"},

		{Target: services.ErrNoDocument, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Bad Request",
			Detail: "A PDF file is required in the 'file' field."},
		{Target: services.ErrEmptyText, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Bad Request"},
		{Target: services.ErrInvalidMode, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Bad Request"},
		{Target: dataprocessing.ErrInvalidInput, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Bad Request"},

		// A missing API key is an operator problem; the message names the key.
		{Target: extraction.ErrNotConfigured, Status: http.StatusInternalServerError, Type: apierrors.TypeConfiguration, Title: "Configuration Error"},
		{Target: extraction.ErrExtractionFailed, Status: http.StatusBadGateway, Type: apierrors.TypeUpstream, Title: "Bad Gateway",
			Detail: "The document extraction service failed. Please try again."},
	}
}
