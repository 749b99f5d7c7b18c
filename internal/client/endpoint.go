package client

import (
	"context"
	"fmt"
	"net/http"
)

// Endpoint is a REST collection at path: T is the entity, C the create body and
// P the partial-update body.
type Endpoint[T, C, P any] struct {
	client *Client
	path   string
}

func (e *Endpoint[T, C, P]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := e.client.do(ctx, http.MethodGet, e.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (e *Endpoint[T, C, P]) Get(ctx context.Context, id uint) (T, error) {
	var item T
	err := e.client.do(ctx, http.MethodGet, e.itemPath(id), nil, &item)
	return item, err
}

func (e *Endpoint[T, C, P]) Create(ctx context.Context, input C) (T, error) {
	var item T
	err := e.client.do(ctx, http.MethodPost, e.path, input, &item)
	return item, err
}

func (e *Endpoint[T, C, P]) Update(ctx context.Context, id uint, patch P) (T, error) {
	var item T
	err := e.client.do(ctx, http.MethodPut, e.itemPath(id), patch, &item)
	return item, err
}

func (e *Endpoint[T, C, P]) Delete(ctx context.Context, id uint) error {
	return e.client.do(ctx, http.MethodDelete, e.itemPath(id), nil, nil)
}

func (e *Endpoint[T, C, P]) itemPath(id uint) string {
	return fmt.Sprintf("%s/%d", e.path, id)
}
