package frame

import (
	"strings"

	"github.com/badger-rl/logreader/internal/schema"
)

// MessageIDName is the fixed enum name the TypeInfo chunk is expected to
// register for the log-local message ID table.
const MessageIDName = "MessageID"

// MessageIDTable is the decoded MessageID enum, giving O(1) lookups from a
// log-local numeric ID to its bare class name (the enum value name with
// its leading "id" stripped) and back.
type MessageIDTable struct {
	names           []string // names[logId] -> enum value name, e.g. "idFrameBegin"
	idFrameBegin    int
	idFrameFinished int
}

// NewMessageIDTable builds a table from the registered MessageID enum.
func NewMessageIDTable(reg *schema.Registry) (*MessageIDTable, error) {
	e, err := reg.EnumOf(MessageIDName)
	if err != nil {
		return nil, err
	}
	t := &MessageIDTable{names: e.Values, idFrameBegin: -1, idFrameFinished: -1}
	for i, name := range e.Values {
		switch name {
		case "idFrameBegin":
			t.idFrameBegin = i
		case "idFrameFinished":
			t.idFrameFinished = i
		}
	}
	return t, nil
}

// Cardinality is the number of declared MessageID values.
func (t *MessageIDTable) Cardinality() int { return len(t.names) }

// IDFrameBegin is the log-local ID of the FrameBegin sentinel.
func (t *MessageIDTable) IDFrameBegin() int { return t.idFrameBegin }

// IDFrameFinished is the log-local ID of the FrameFinished sentinel.
func (t *MessageIDTable) IDFrameFinished() int { return t.idFrameFinished }

// ClassName returns the bare representation class name for a log-local ID:
// the enum value name with its leading "id" prefix stripped.
func (t *MessageIDTable) ClassName(logID int) string {
	return strings.TrimPrefix(t.names[logID], "id")
}
