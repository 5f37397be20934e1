// Package chat defines the typed request and response payloads for the
// chat completions endpoint.
//
// # Overview
//
// The package provides validated value types for everything that goes on the
// wire:
//
//   - Model and Role: closed sets of identifiers with fixed wire names
//   - Message: a role/content pair, kept in conversation order
//   - StopSequence: a single stop string or a list of up to four
//   - Request: the mutable request builder; every setter checks its range
//   - Response: the immutable reply, populated only by decoding JSON
//
// # Basic Usage
//
//	req := chat.NewRequest(chat.GPT35Turbo)
//	req.AddMessage(chat.NewMessage(chat.RoleSystem, "You are terse."))
//	req.AddMessage(chat.NewMessage(chat.RoleUser, "What is Earth?"))
//
//	if err := req.SetTemperature(0.2); err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := req.Perform(ctx, client, credential)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Content())
//
// # Validation
//
// Constraints are enforced when a value is set, never at send time:
//
//   - temperature in [0, 2], top_p in [0, 1]
//   - n in [1, 1024], max_tokens >= 1
//   - presence_penalty and frequency_penalty in [-2, 2]
//   - logit_bias values in [-100, 100]
//   - stop lists hold at most 4 sequences
//
// A rejected value returns a *ConstraintError and leaves the request as it
// was. Fields that were never set are omitted from the encoded JSON.
//
// # Streaming
//
// The stream flag is accepted and forwarded to the API unchanged. Responses
// are always decoded as a single JSON document; incremental server-sent
// events are not consumed.
package chat
