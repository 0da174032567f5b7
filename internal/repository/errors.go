package repository

import (
	"errors"
	"fmt"

	"datagraph-backend/internal/infrastructure/graphstore"
	appErrors "datagraph-backend/pkg/errors"
)

// notFound builds the error returned when a statement matched nothing.
func notFound(resource, name string) error {
	return appErrors.NewNotFound(fmt.Sprintf("%s '%s' not found", resource, name))
}

// storeError classifies a graph store failure.
func storeError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, graphstore.ErrUnavailable) {
		return appErrors.NewUnavailable("graph store unavailable", err)
	}
	return appErrors.NewInternal(action, err)
}

// emptyResult is a write that should have returned a row but did not.
func emptyResult(action string) error {
	return appErrors.NewInternal(action+": no record returned", nil)
}
