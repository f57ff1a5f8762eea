package domain

import (
	"errors"
)

const (
	HeaderDeviceID = "X-Device-ID"
	LocalsDeviceID = "device_id"
	LocalsBareBody = "bare_body"

	DateLayout = "2006-01-02"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageMissingDeviceID      = "Se requiere identificador de dispositivo."
	MessageTooManyRequests      = "Demasiadas solicitudes. Intenta de nuevo en un minuto."

	ErrParseUUID       = errors.New("failed to parse UUID")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrMissingDeviceID = errors.New("missing device identifier")
)
