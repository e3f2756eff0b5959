package model

import (
	"context"
	"fmt"
)

// Collect drains a Generate channel pair and returns the final response.
// Partial chunks are forwarded to onDelta when provided. Collect returns the
// first error observed, including context cancellation while waiting.
func Collect(ctx context.Context, respCh <-chan Response, errCh <-chan error, onDelta func(Response)) (*Response, error) {
	var final *Response

	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				if onDelta != nil {
					onDelta(resp)
				}
				continue
			}
			r := resp
			final = &r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if final == nil {
		return nil, fmt.Errorf("model stream ended without a final response")
	}
	return final, nil
}
