/*
Package transport sends chat completion payloads over HTTP and classifies
the outcome.

# Overview

Perform is the single dispatch point. It is generic over the response type:
a payload implements Payload[R], which pairs JSON encoding with a decoder
for its own response, so the caller gets a typed *R back without casts.

	client := transport.NewClient()
	resp, err := transport.Perform[chat.Response](ctx, client, req, credential)

Each call makes exactly one HTTP request. Nothing is retried; callers decide
what to do with each error kind:

	switch {
	case errors.Is(err, transport.ErrUnauthorized):
		// refresh the credential
	case errors.As(err, &netErr):
		// no response; safe to try again later
	case errors.As(err, &apiErr):
		// inspect apiErr.StatusCode
	case errors.As(err, &decErr):
		// protocol mismatch; not transient
	}

# Streaming

A payload may set the stream flag; it is forwarded untouched. The reply is
always read and decoded as a single JSON document.

# Observers

Observers registered with WithObserver receive one *Exchange per call after
classification: the redacted headers, both bodies, status, outcome label and
latency. The metrics collector and the exchange log recorder are observers.
*/
package transport
