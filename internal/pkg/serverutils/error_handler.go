package serverutils

import (
	"errors"

	"ship-framework-be/pkg/ideation"
	"ship-framework-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

const (
	MessageCredentialMissing = "No se ha configurado la clave de la API de IA. Configura GOOGLE_GEMINI_API_KEY y reinicia el servicio."
	MessageCredentialInvalid = "La clave de la API de IA no es válida. Revisa GOOGLE_GEMINI_API_KEY y reinicia el servicio."
	MessageServiceFailure    = "El servicio de IA no respondió. Inténtalo de nuevo en unos momentos."
	MessageUnsupported       = "El proveedor de IA configurado no admite esta operación."
)

// ErrorHandlerMiddleware turns errors returned by handlers into the error
// envelope with a status derived from the error type.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// WriteError writes err as an error envelope.
func WriteError(ctx *fiber.Ctx, err error) error {
	status, body := Classify(err)
	return ctx.Status(status).JSON(body)
}

// Classify maps an error to an HTTP status and envelope.
func Classify(err error) (int, ErrorResponseBody) {
	var verr *ideation.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusUnprocessableEntity, ErrorResponse("Validation failed", verr.Fields)
	}

	if errors.Is(err, ideation.ErrGenerationInProgress) {
		return fiber.StatusConflict, ErrorResponse(err.Error(), nil)
	}
	if errors.Is(err, ideation.ErrNotFound) || errors.Is(err, ideation.ErrHistoryIndex) {
		return fiber.StatusNotFound, ErrorResponse(err.Error(), nil)
	}

	var lerr *llm.Error
	if errors.As(err, &lerr) {
		switch lerr.Kind {
		case llm.KindMissingCredential:
			return fiber.StatusServiceUnavailable, ErrorResponse(MessageCredentialMissing, map[string]string{"credential": string(lerr.Kind)})
		case llm.KindInvalidCredential:
			return fiber.StatusServiceUnavailable, ErrorResponse(MessageCredentialInvalid, map[string]string{"credential": string(lerr.Kind)})
		case llm.KindUnsupported:
			return fiber.StatusNotImplemented, ErrorResponse(MessageUnsupported, nil)
		default:
			return fiber.StatusBadGateway, ErrorResponse(MessageServiceFailure, nil)
		}
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ErrorResponse(ferr.Message, nil)
	}

	return fiber.StatusInternalServerError, ErrorResponse("Internal server error", nil)
}
