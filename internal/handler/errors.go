package handler

import (
	"errors"
	"net/http"

	"redshift-ddl/internal/domain"
)

// Classify maps a relay error to an HTTP status and a stable error code.
func Classify(err error) (int, string) {
	var (
		validation *domain.ValidationError
		invalidRef *domain.InvalidReferenceError
		naming     *domain.NamingConventionError
		notFound   *domain.ContentNotFoundError
		secret     *domain.SecretUnavailableError
		connection *domain.ConnectionError
		schemaErr  *domain.SchemaCreateError
		ddlErr     *domain.DdlExecutionError
		processing *domain.SchemaProcessingError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &invalidRef):
		return http.StatusBadRequest, "INVALID_REFERENCE"
	case errors.As(err, &naming):
		return http.StatusBadRequest, "NAMING_CONVENTION_ERROR"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "CONTENT_NOT_FOUND"
	case errors.As(err, &secret):
		return http.StatusBadGateway, "SECRET_UNAVAILABLE"
	case errors.As(err, &connection):
		return http.StatusBadGateway, "CONNECTION_ERROR"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "SCHEMA_CREATE_ERROR"
	case errors.As(err, &ddlErr):
		return http.StatusUnprocessableEntity, "DDL_EXECUTION_ERROR"
	case errors.As(err, &processing):
		return http.StatusUnprocessableEntity, "SCHEMA_PROCESSING_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
