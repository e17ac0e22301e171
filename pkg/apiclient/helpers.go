package apiclient

import (
	"context"
	"fmt"
	"net/url"
)

// getResource performs a GET request to the given path and decodes the
// response body into a value of type T.
//
// Example:
//
//	item, err := getResource[tree.Item](ctx, c, "/api/v1/items/abc")
func getResource[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var result T
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// createResource performs a POST request and decodes the response into T.
func createResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// patchResource performs a PATCH request and decodes the response into T.
func patchResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.patch(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// resourcePath formats a path template, escaping every argument as a path
// segment.
//
// Example:
//
//	path := resourcePath("/api/v1/items/%s/move", id)
func resourcePath(format string, args ...string) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}
