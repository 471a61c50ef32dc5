package model

import (
	"errors"
	"testing"
	"time"

	"github.com/daviddao/aurora/pkg/clock"
)

func TestCompose(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	vc := clock.VectorClock{"device-a": 3}
	mentions := []string{"user-2"}

	e, err := Compose(ComposeParams{
		ConversationID: "conversation-1",
		SenderID:       "user-1",
		Clock:          vc,
		Body:           "hello",
		Mentions:       mentions,
		Encrypted:      true,
		Now:            func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !isUUID(e.ID) {
		t.Fatalf("ID %q is not a UUID", e.ID)
	}
	if e.CreatedAt != 1700000000123 {
		t.Fatalf("CreatedAt = %d", e.CreatedAt)
	}
	if e.DeliveryState != StatePending {
		t.Fatalf("DeliveryState = %q, want pending", e.DeliveryState)
	}
	if !e.Encrypted {
		t.Fatal("Encrypted lost")
	}

	// The envelope owns its clock and mentions.
	vc["device-a"] = 99
	mentions[0] = "changed"
	if e.VectorClock.Get("device-a") != 3 {
		t.Fatal("Compose shares the caller's clock")
	}
	if e.Payload.Mentions[0] != "user-2" {
		t.Fatal("Compose shares the caller's mentions")
	}
}

func TestCompose_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e, err := Compose(ComposeParams{
			ConversationID: "c", SenderID: "s", Clock: clock.VectorClock{"a": 1}, Body: "x",
		})
		if err != nil {
			t.Fatal(err)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestCompose_Rejects(t *testing.T) {
	base := ComposeParams{ConversationID: "c", SenderID: "s", Clock: clock.VectorClock{"a": 1}, Body: "x"}

	noBody := base
	noBody.Body = ""
	badReply := base
	badReply.ReplyTo = "nope"
	noClock := base
	noClock.Clock = nil
	noConv := base
	noConv.ConversationID = ""

	for name, p := range map[string]ComposeParams{
		"empty body": noBody,
		"bad reply":  badReply,
		"nil clock":  noClock,
		"empty conv": noConv,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Compose(p); !errors.Is(err, ErrValidation) {
				t.Fatalf("Compose: got %v, want validation error", err)
			}
		})
	}
}

func TestValidate_InvalidState(t *testing.T) {
	e, err := Compose(ComposeParams{ConversationID: "c", SenderID: "s", Clock: clock.VectorClock{"a": 1}, Body: "x"})
	if err != nil {
		t.Fatal(err)
	}
	e.DeliveryState = "archived"
	var ve *ValidationError
	if err := e.Validate(); !errors.As(err, &ve) || ve.Field != "deliveryState" {
		t.Fatalf("Validate: got %v, want deliveryState error", err)
	}
}
