package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IntentType discriminates the closed set of itinerary-modification intents
// produced by the device's chat assistant.
type IntentType string

const (
	IntentAdd    IntentType = "add"
	IntentRemove IntentType = "remove"
	IntentMove   IntentType = "move"
	IntentUpdate IntentType = "update"
)

// Intent is the tagged union of chat-derived itinerary modifications.
// Each variant carries its own strongly-typed payload; there is no untyped
// bag of fields. Use DecodeIntent to parse one from a request body.
type Intent interface {
	// Kind returns the discriminator for this variant.
	Kind() IntentType
}

// AddIntent plans a new activity on a day.
type AddIntent struct {
	Day      time.Time  `json:"day"`
	TimeSlot TimeSlot   `json:"time_slot"`
	Title    string     `json:"title"`
	Category string     `json:"category,omitempty"`
	PlaceID  *uuid.UUID `json:"place_id,omitempty"`
}

// RemoveIntent drops an existing activity.
type RemoveIntent struct {
	ActivityID uuid.UUID `json:"activity_id"`
}

// MoveIntent relocates an activity to another day and/or time slot.
type MoveIntent struct {
	ActivityID uuid.UUID  `json:"activity_id"`
	Day        *time.Time `json:"day,omitempty"`
	TimeSlot   *TimeSlot  `json:"time_slot,omitempty"`
}

// UpdateIntent patches fields of an existing activity.
type UpdateIntent struct {
	ActivityID uuid.UUID     `json:"activity_id"`
	Patch      ActivityPatch `json:"patch"`
}

func (AddIntent) Kind() IntentType    { return IntentAdd }
func (RemoveIntent) Kind() IntentType { return IntentRemove }
func (MoveIntent) Kind() IntentType   { return IntentMove }
func (UpdateIntent) Kind() IntentType { return IntentUpdate }

// intentEnvelope is the wire shape: a type tag plus the variant payload.
type intentEnvelope struct {
	Type    IntentType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeIntent parses a JSON intent envelope into its concrete variant.
// An unknown type tag or malformed payload yields ErrValidation.
func DecodeIntent(data []byte) (Intent, error) {
	var env intentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed intent: %v", ErrValidation, err)
	}

	var (
		intent Intent
		err    error
	)
	switch env.Type {
	case IntentAdd:
		var v AddIntent
		err = json.Unmarshal(env.Payload, &v)
		intent = v
	case IntentRemove:
		var v RemoveIntent
		err = json.Unmarshal(env.Payload, &v)
		intent = v
	case IntentMove:
		var v MoveIntent
		err = json.Unmarshal(env.Payload, &v)
		intent = v
	case IntentUpdate:
		var v UpdateIntent
		err = json.Unmarshal(env.Payload, &v)
		intent = v
	default:
		return nil, fmt.Errorf("%w: unknown intent type %q", ErrValidation, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s payload: %v", ErrValidation, env.Type, err)
	}
	return intent, nil
}
