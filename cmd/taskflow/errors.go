package main

import (
	"errors"
	"fmt"

	"taskflow/internal/client"
)

// failure turns a collection error into the message shown to the user: the
// collection's fixed text plus the server's reason when there is one.
func failure(collectionErr string, err error) error {
	if collectionErr == "" {
		return err
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("%s: %s", collectionErr, apiErr.Message)
	}
	return fmt.Errorf("%s: %w", collectionErr, err)
}
