package hub

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire names shared with the web clients. These are interop contract and must
// not be renamed.
const (
	EventItemAdded   = "ReceiveItemAdded"
	EventItemUpdated = "ReceiveItemUpdated"
	EventItemDeleted = "ReceiveItemDeleted"

	InvokeJoinListGroup  = "JoinListGroup"
	InvokeLeaveListGroup = "LeaveListGroup"
)

// Frame is the single message shape used in both directions: a target name
// plus positional JSON arguments.
type Frame struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// RoomKey derives the room name for a list.
func RoomKey(listID uuid.UUID) string {
	return "list_" + listID.String()
}

// marshalFrame encodes a frame with the given arguments.
func marshalFrame(target string, args ...interface{}) ([]byte, error) {
	frame := Frame{Target: target, Arguments: make([]json.RawMessage, 0, len(args))}
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s argument: %w", target, err)
		}
		frame.Arguments = append(frame.Arguments, raw)
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s frame: %w", target, err)
	}
	return data, nil
}

// firstStringArg decodes the first argument of a frame as a string.
func firstStringArg(frame *Frame) (string, bool) {
	if len(frame.Arguments) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(frame.Arguments[0], &s); err != nil {
		return "", false
	}
	return s, true
}
