package realtime

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/Ivan2330/english-platform-deploy/internal/models"
)

// Inbound and outbound action names on the call channel.
const (
	ActionToggleMic    = "toggle_mic"
	ActionToggleCamera = "toggle_camera"
	ActionShareScreen  = "share_screen"
	ActionSetQuality   = "set_quality"
	ActionOffer        = "offer"
	ActionAnswer       = "answer"
	ActionICECandidate = "ice_candidate"
	ActionEndCall      = "end_call"

	ActionJoin          = "join"
	ActionMicStatus     = "mic_status"
	ActionCameraStatus  = "camera_status"
	ActionScreenSharing = "screen_sharing"
	ActionQualityChange = "quality_change"
	ActionCallEnded     = "call_ended"
	ActionLeave         = "leave"
)

// ErrMalformed marks an inbound frame that is not valid JSON or falls
// outside the recognized action set. Sessions close the connection with
// a protocol-error code when they see it.
var ErrMalformed = errors.New("malformed payload")

// CallAction is one decoded inbound frame on the call channel. The
// negotiation payloads stay opaque: the server relays them without
// interpreting their contents.
type CallAction struct {
	Action  string `json:"action"`
	Status  *bool  `json:"status,omitempty"`
	Quality string `json:"quality,omitempty"`

	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// DecodeCallAction decodes and validates one inbound frame against the
// closed action set. Anything outside it is rejected here, at the
// boundary, rather than falling through a dispatch silently.
func DecodeCallAction(data []byte) (*CallAction, error) {
	var action CallAction
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, ErrMalformed
	}

	switch action.Action {
	case ActionToggleMic, ActionToggleCamera, ActionShareScreen:
		if action.Status == nil {
			return nil, ErrMalformed
		}
	case ActionSetQuality:
		if !models.ValidQuality(action.Quality) {
			return nil, ErrMalformed
		}
	case ActionOffer:
		if len(action.Offer) == 0 {
			return nil, ErrMalformed
		}
	case ActionAnswer:
		if len(action.Answer) == 0 {
			return nil, ErrMalformed
		}
	case ActionICECandidate:
		if len(action.Candidate) == 0 {
			return nil, ErrMalformed
		}
	case ActionEndCall:
	default:
		return nil, ErrMalformed
	}
	return &action, nil
}

// relayPayload returns the field name and raw payload to forward for a
// negotiation action.
func (a *CallAction) relayPayload() (string, json.RawMessage) {
	switch a.Action {
	case ActionOffer:
		return "offer", a.Offer
	case ActionAnswer:
		return "answer", a.Answer
	default:
		return "candidate", a.Candidate
	}
}

// DecodeChatMessage extracts the text body of an inbound chat frame.
// The content key must be present; any other shape is malformed.
func DecodeChatMessage(data []byte) (string, error) {
	var frame struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", ErrMalformed
	}
	if frame.Content == nil {
		return "", ErrMalformed
	}
	return *frame.Content, nil
}

// encodeEvent builds an outbound call-channel event: the action, the
// originating user, and any extra payload fields.
func encodeEvent(action string, userID uint, extra map[string]interface{}) []byte {
	event := map[string]interface{}{
		"action": action,
		"user":   userID,
	}
	for k, v := range extra {
		event[k] = v
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to encode %s event: %v", action, err)
		return nil
	}
	return data
}
