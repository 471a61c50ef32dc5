package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/daviddao/aurora/pkg/clock"
)

// ParseEnvelope decodes and validates a JSON-encoded envelope.
// Any schema violation is returned as a *ValidationError.
func ParseEnvelope(data []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Envelope{}, invalid("$", "malformed JSON: %v", err)
	}
	if dec.More() {
		return Envelope{}, invalid("$", "trailing data after envelope")
	}
	return ParseEnvelopeValue(raw)
}

// ParseEnvelopeValue validates an already-decoded untyped value, as
// produced by encoding/json into an interface{} (with or without
// UseNumber) or built by hand from Go maps and slices.
func ParseEnvelopeValue(v any) (Envelope, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Envelope{}, invalid("$", "expected object, got %s", typeName(v))
	}

	var e Envelope
	var err error

	if e.ID, err = requireString(obj, "id", "id"); err != nil {
		return Envelope{}, err
	}
	if !isUUID(e.ID) {
		return Envelope{}, invalid("id", "must be a UUID")
	}
	if e.ConversationID, err = requireNonEmpty(obj, "conversationId", "conversationId"); err != nil {
		return Envelope{}, err
	}
	if e.SenderID, err = requireNonEmpty(obj, "senderId", "senderId"); err != nil {
		return Envelope{}, err
	}

	createdAt, present := obj["createdAt"]
	if !present {
		return Envelope{}, invalid("createdAt", "required")
	}
	ts, err := toInteger("createdAt", createdAt)
	if err != nil {
		return Envelope{}, err
	}
	if ts < 0 {
		return Envelope{}, invalid("createdAt", "must be non-negative")
	}
	e.CreatedAt = ts

	if e.VectorClock, err = parseClock(obj["vectorClock"], obj); err != nil {
		return Envelope{}, err
	}
	if e.Payload, err = parsePayload(obj["payload"], obj); err != nil {
		return Envelope{}, err
	}

	state, err := requireString(obj, "deliveryState", "deliveryState")
	if err != nil {
		return Envelope{}, err
	}
	e.DeliveryState = DeliveryState(state)
	if !e.DeliveryState.Valid() {
		return Envelope{}, invalid("deliveryState", "must be one of pending, sent, delivered, read, failed (got %q)", state)
	}

	enc, present := obj["encrypted"]
	if !present {
		return Envelope{}, invalid("encrypted", "required")
	}
	if e.Encrypted, ok = enc.(bool); !ok {
		return Envelope{}, invalid("encrypted", "expected boolean, got %s", typeName(enc))
	}

	return e, nil
}

func parseClock(v any, parent map[string]any) (clock.VectorClock, error) {
	if _, present := parent["vectorClock"]; !present {
		return nil, invalid("vectorClock", "required")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("vectorClock", "expected object, got %s", typeName(v))
	}
	vc := make(clock.VectorClock, len(obj))
	for replica, raw := range obj {
		field := "vectorClock." + replica
		if replica == "" {
			return nil, invalid("vectorClock", "replica id must not be empty")
		}
		n, err := toInteger(field, raw)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, invalid(field, "counter must be non-negative")
		}
		vc[replica] = uint64(n)
	}
	return vc, nil
}

func parsePayload(v any, parent map[string]any) (Payload, error) {
	if _, present := parent["payload"]; !present {
		return Payload{}, invalid("payload", "required")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Payload{}, invalid("payload", "expected object, got %s", typeName(v))
	}

	var p Payload
	var err error
	if p.Body, err = requireNonEmpty(obj, "body", "payload.body"); err != nil {
		return Payload{}, err
	}

	p.Mentions = []string{}
	if raw, present := obj["mentions"]; present {
		list, ok := raw.([]any)
		if !ok {
			return Payload{}, invalid("payload.mentions", "expected array, got %s", typeName(raw))
		}
		for i, item := range list {
			field := indexField("payload.mentions", i)
			s, ok := item.(string)
			if !ok {
				return Payload{}, invalid(field, "expected string, got %s", typeName(item))
			}
			if s == "" {
				return Payload{}, invalid(field, "must not be empty")
			}
			p.Mentions = append(p.Mentions, s)
		}
	}

	if raw, present := obj["replyToEventId"]; present {
		s, ok := raw.(string)
		if !ok {
			return Payload{}, invalid("payload.replyToEventId", "expected string, got %s", typeName(raw))
		}
		if !isUUID(s) {
			return Payload{}, invalid("payload.replyToEventId", "must be a UUID")
		}
		p.ReplyToEventID = s
	}
	return p, nil
}

func requireString(obj map[string]any, key, field string) (string, error) {
	raw, present := obj[key]
	if !present {
		return "", invalid(field, "required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalid(field, "expected string, got %s", typeName(raw))
	}
	return s, nil
}

func requireNonEmpty(obj map[string]any, key, field string) (string, error) {
	s, err := requireString(obj, key, field)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", invalid(field, "must not be empty")
	}
	return s, nil
}

// toInteger accepts any JSON or Go numeric value that holds an exact
// integer representable as int64.
func toInteger(field string, v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, invalid(field, "expected integer, got %q", n.String())
		}
		return floatToInteger(field, f)
	case float64:
		return floatToInteger(field, n)
	case float32:
		return floatToInteger(field, float64(n))
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, invalid(field, "integer out of range")
		}
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, invalid(field, "integer out of range")
		}
		return int64(n), nil
	default:
		return 0, invalid(field, "expected integer, got %s", typeName(v))
	}
}

func floatToInteger(field string, f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, invalid(field, "expected integer, got %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, invalid(field, "integer out of range")
	}
	return int64(f), nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func indexField(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
