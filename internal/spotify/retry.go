package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// get performs an authorized GET with retries.
//
// Throttling (429), server errors and transport errors are retried with
// exponential backoff. A 401 invalidates the cached token and is retried once
// with a fresh one. Token failures and other statuses are returned as is.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var (
		body         []byte
		reauthorized bool
	)

	operation := func() error {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("getting access token: %w", err))
		}

		b, err := c.doSingleRequest(ctx, reqURL, token)
		if err == nil {
			body = b
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return err
		}
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized && !reauthorized:
			reauthorized = true
			c.tokens.Invalidate()
			return err
		case statusErr.Temporary():
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 8 * c.retryInterval
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}
