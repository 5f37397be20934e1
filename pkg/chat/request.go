package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"mercator-hq/chatclient/pkg/transport"
)

// Parameter bounds enforced by the Request setters.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinN           = 1
	MaxN           = 1024
	MinMaxTokens   = 1
	MinPenalty     = -2.0
	MaxPenalty     = 2.0
	MinLogitBias   = -100
	MaxLogitBias   = 100
)

// Request is a chat completion request under construction.
//
// A Request is created with NewRequest and then adjusted with its setters.
// Every optional field starts unset and is omitted from the encoded JSON until
// a setter accepts a value for it. Setters that can fail return a
// *ConstraintError and leave the request unchanged.
//
// A Request is not safe for concurrent mutation and must not be changed while
// a Perform using it is in flight.
type Request struct {
	model    Model
	messages []Message

	temperature      *float64
	topP             *float64
	n                *int
	stream           *bool
	stop             *StopSequence
	maxTokens        *int
	presencePenalty  *float64
	frequencyPenalty *float64
	logitBias        map[uint32]int
	user             *string
}

var (
	_ transport.Payload[Response] = (*Request)(nil)
	_ transport.ModelNamer        = (*Request)(nil)
	_ transport.UsageReporter     = (*Response)(nil)
)

// NewRequest returns a request for model with no messages and no optional
// fields set.
func NewRequest(model Model) *Request {
	return &Request{
		model:    model,
		messages: []Message{},
	}
}

// Perform sends the request with transport.Perform and returns the decoded
// response.
func (r *Request) Perform(ctx context.Context, client *transport.Client, auth transport.HeaderGenerator) (*Response, error) {
	return transport.Perform[Response](ctx, client, r, auth)
}

// DecodeResponse decodes a chat completion response body.
func (r *Request) DecodeResponse(body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Model returns the target model.
func (r *Request) Model() Model {
	return r.model
}

// ModelName returns the model's wire name.
func (r *Request) ModelName() string {
	return r.model.String()
}

// SetModel replaces the target model.
func (r *Request) SetModel(model Model) {
	r.model = model
}

// Messages returns a copy of the conversation in order.
func (r *Request) Messages() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// AddMessage appends a message to the conversation.
func (r *Request) AddMessage(msg Message) {
	r.messages = append(r.messages, msg)
}

// AddMessages appends messages to the conversation, preserving their order.
func (r *Request) AddMessages(msgs ...Message) {
	r.messages = append(r.messages, msgs...)
}

// ClearMessages removes every message from the conversation.
func (r *Request) ClearMessages() {
	r.messages = r.messages[:0]
}

// SetTemperature sets the sampling temperature, which must be in [0, 2].
func (r *Request) SetTemperature(temperature float64) error {
	if !inRange(temperature, MinTemperature, MaxTemperature) {
		return &ConstraintError{Field: "temperature", Value: temperature, Message: "must be between 0 and 2"}
	}
	r.temperature = &temperature
	return nil
}

// Temperature returns the sampling temperature and whether it is set.
func (r *Request) Temperature() (float64, bool) {
	return derefFloat(r.temperature)
}

// SetTopP sets the nucleus sampling mass, which must be in [0, 1].
func (r *Request) SetTopP(topP float64) error {
	if !inRange(topP, MinTopP, MaxTopP) {
		return &ConstraintError{Field: "top_p", Value: topP, Message: "must be between 0 and 1"}
	}
	r.topP = &topP
	return nil
}

// TopP returns the nucleus sampling mass and whether it is set.
func (r *Request) TopP() (float64, bool) {
	return derefFloat(r.topP)
}

// SetN sets how many choices to generate, which must be in [1, 1024].
func (r *Request) SetN(n int) error {
	if n < MinN || n > MaxN {
		return &ConstraintError{Field: "n", Value: n, Message: fmt.Sprintf("must be between %d and %d", MinN, MaxN)}
	}
	r.n = &n
	return nil
}

// N returns the number of choices and whether it is set.
func (r *Request) N() (int, bool) {
	return derefInt(r.n)
}

// SetStream sets the stream flag. The flag is forwarded to the API as is; the
// response is still read as one JSON document.
func (r *Request) SetStream(stream bool) {
	r.stream = &stream
}

// Stream returns the stream flag and whether it is set.
func (r *Request) Stream() (bool, bool) {
	if r.stream == nil {
		return false, false
	}
	return *r.stream, true
}

// SetStop sets the stop sequence. The list form may hold at most four entries;
// the string form is always accepted.
func (r *Request) SetStop(stop StopSequence) error {
	if stop.IsList() && stop.Len() > MaxStopSequences {
		return &ConstraintError{
			Field:   "stop",
			Value:   stop.Values(),
			Message: fmt.Sprintf("can't have more than %d elements", MaxStopSequences),
		}
	}
	r.stop = &stop
	return nil
}

// Stop returns the stop sequence and whether it is set.
func (r *Request) Stop() (StopSequence, bool) {
	if r.stop == nil {
		return StopSequence{}, false
	}
	return *r.stop, true
}

// SetMaxTokens sets the completion token limit, which must be at least 1.
func (r *Request) SetMaxTokens(maxTokens int) error {
	if maxTokens < MinMaxTokens {
		return &ConstraintError{Field: "max_tokens", Value: maxTokens, Message: "must be greater than 0"}
	}
	r.maxTokens = &maxTokens
	return nil
}

// MaxTokens returns the completion token limit and whether it is set.
func (r *Request) MaxTokens() (int, bool) {
	return derefInt(r.maxTokens)
}

// SetPresencePenalty sets the presence penalty, which must be in [-2, 2].
func (r *Request) SetPresencePenalty(penalty float64) error {
	if !inRange(penalty, MinPenalty, MaxPenalty) {
		return &ConstraintError{Field: "presence_penalty", Value: penalty, Message: "must be between -2 and 2"}
	}
	r.presencePenalty = &penalty
	return nil
}

// PresencePenalty returns the presence penalty and whether it is set.
func (r *Request) PresencePenalty() (float64, bool) {
	return derefFloat(r.presencePenalty)
}

// SetFrequencyPenalty sets the frequency penalty, which must be in [-2, 2].
func (r *Request) SetFrequencyPenalty(penalty float64) error {
	if !inRange(penalty, MinPenalty, MaxPenalty) {
		return &ConstraintError{Field: "frequency_penalty", Value: penalty, Message: "must be between -2 and 2"}
	}
	r.frequencyPenalty = &penalty
	return nil
}

// FrequencyPenalty returns the frequency penalty and whether it is set.
func (r *Request) FrequencyPenalty() (float64, bool) {
	return derefFloat(r.frequencyPenalty)
}

// SetLogitBias replaces the whole logit bias map. Every bias must be in
// [-100, 100]; one bad entry rejects the call.
func (r *Request) SetLogitBias(biases map[uint32]int) error {
	if err := checkLogitBiases(biases); err != nil {
		return err
	}
	replaced := make(map[uint32]int, len(biases))
	for token, bias := range biases {
		replaced[token] = bias
	}
	r.logitBias = replaced
	return nil
}

// AddLogitBias sets the bias of a single token. The bias must be in
// [-100, 100].
func (r *Request) AddLogitBias(token uint32, bias int) error {
	if err := checkLogitBias(token, bias); err != nil {
		return err
	}
	if r.logitBias == nil {
		r.logitBias = make(map[uint32]int, 1)
	}
	r.logitBias[token] = bias
	return nil
}

// AddLogitBiases merges biases into the logit bias map, overwriting existing
// tokens. All values are checked before anything is merged.
func (r *Request) AddLogitBiases(biases map[uint32]int) error {
	if err := checkLogitBiases(biases); err != nil {
		return err
	}
	if r.logitBias == nil {
		r.logitBias = make(map[uint32]int, len(biases))
	}
	for token, bias := range biases {
		r.logitBias[token] = bias
	}
	return nil
}

// LogitBias returns a copy of the logit bias map, or nil when unset.
func (r *Request) LogitBias() map[uint32]int {
	if r.logitBias == nil {
		return nil
	}
	out := make(map[uint32]int, len(r.logitBias))
	for token, bias := range r.logitBias {
		out[token] = bias
	}
	return out
}

// SetUser sets the end-user identifier.
func (r *Request) SetUser(user string) {
	r.user = &user
}

// User returns the end-user identifier and whether it is set.
func (r *Request) User() (string, bool) {
	if r.user == nil {
		return "", false
	}
	return *r.user, true
}

// requestWire is the JSON shape of a request. Field order matches the order
// the API documents.
type requestWire struct {
	Model            Model           `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      *decimal        `json:"temperature,omitempty"`
	TopP             *decimal        `json:"top_p,omitempty"`
	N                *int            `json:"n,omitempty"`
	Stream           *bool           `json:"stream,omitempty"`
	Stop             *StopSequence   `json:"stop,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	PresencePenalty  *decimal        `json:"presence_penalty,omitempty"`
	FrequencyPenalty *decimal        `json:"frequency_penalty,omitempty"`
	LogitBias        *map[uint32]int `json:"logit_bias,omitempty"`
	User             *string         `json:"user,omitempty"`
}

// MarshalJSON encodes the request, omitting every unset optional field.
func (r *Request) MarshalJSON() ([]byte, error) {
	wire := requestWire{
		Model:            r.model,
		Messages:         r.messages,
		Temperature:      toDecimal(r.temperature),
		TopP:             toDecimal(r.topP),
		N:                r.n,
		Stream:           r.stream,
		Stop:             r.stop,
		MaxTokens:        r.maxTokens,
		PresencePenalty:  toDecimal(r.presencePenalty),
		FrequencyPenalty: toDecimal(r.frequencyPenalty),
		User:             r.user,
	}
	if wire.Messages == nil {
		wire.Messages = []Message{}
	}
	if r.logitBias != nil {
		wire.LogitBias = &r.logitBias
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a request, passing every present field through its
// setter. On error the receiver is left unchanged.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire requestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Model == "" {
		return missingField("model")
	}
	if wire.Messages == nil {
		return missingField("messages")
	}

	decoded := NewRequest(wire.Model)
	decoded.AddMessages(wire.Messages...)

	setters := []func() error{
		func() error { return setIf(wire.Temperature, decoded.SetTemperature) },
		func() error { return setIf(wire.TopP, decoded.SetTopP) },
		func() error { return setIntIf(wire.N, decoded.SetN) },
		func() error { return setIntIf(wire.MaxTokens, decoded.SetMaxTokens) },
		func() error { return setIf(wire.PresencePenalty, decoded.SetPresencePenalty) },
		func() error { return setIf(wire.FrequencyPenalty, decoded.SetFrequencyPenalty) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	if wire.Stream != nil {
		decoded.SetStream(*wire.Stream)
	}
	if wire.Stop != nil {
		if err := decoded.SetStop(*wire.Stop); err != nil {
			return err
		}
	}
	if wire.LogitBias != nil {
		if err := decoded.SetLogitBias(*wire.LogitBias); err != nil {
			return err
		}
	}
	if wire.User != nil {
		decoded.SetUser(*wire.User)
	}

	*r = *decoded
	return nil
}

// decimal is a float that always encodes with a decimal point, so -2 is
// written as -2.0.
type decimal float64

// MarshalJSON implements json.Marshaler.
func (d decimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported float value %v", f)
	}
	b := strconv.AppendFloat(nil, f, 'f', -1, 64)
	if !bytes.ContainsRune(b, '.') {
		b = append(b, '.', '0')
	}
	return b, nil
}

func checkLogitBias(token uint32, bias int) error {
	if bias < MinLogitBias || bias > MaxLogitBias {
		return &ConstraintError{
			Field:   "logit_bias",
			Value:   fmt.Sprintf("%d:%d", token, bias),
			Message: "bias must be between -100 and 100",
		}
	}
	return nil
}

func checkLogitBiases(biases map[uint32]int) error {
	for token, bias := range biases {
		if err := checkLogitBias(token, bias); err != nil {
			return err
		}
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func derefFloat(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func derefInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func toDecimal(p *float64) *decimal {
	if p == nil {
		return nil
	}
	d := decimal(*p)
	return &d
}

func setIf(v *decimal, set func(float64) error) error {
	if v == nil {
		return nil
	}
	return set(float64(*v))
}

func setIntIf(v *int, set func(int) error) error {
	if v == nil {
		return nil
	}
	return set(*v)
}
