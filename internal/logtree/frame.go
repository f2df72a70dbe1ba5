package logtree

import (
	"github.com/badger-rl/logreader/internal/frame"
	"github.com/badger-rl/logreader/internal/recindex"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/badger-rl/logreader/internal/value"
)

// FrameView is the capability set shared by FrameInstance and
// FrameAccessor.
type FrameView interface {
	StartByte() int64
	EndByte() int64
	ThreadName() string
	AbsIndex() uint64
}

// FrameInstance is an owning, self-contained snapshot of one frame: it owns
// its full message list rather than resolving children through an index.
type FrameInstance struct {
	startByte     int64
	endByte       int64
	threadName    string
	absIndex      uint64
	Messages      []*MessageInstance
	DummyMessages []*MessageInstance
}

// NewFrameInstance builds an owned frame snapshot from a freshly parsed
// frame.Frame, assigning absolute message indices starting at
// firstAbsMsgIndex (the caller tracks the running total across frames,
// including dummy messages, per the resolved double-begin accounting rule).
func NewFrameInstance(f frame.Frame, absIndex uint64, firstAbsMsgIndex uint64) *FrameInstance {
	abs := firstAbsMsgIndex
	dummies := make([]*MessageInstance, len(f.DummyMessages))
	for i, m := range f.DummyMessages {
		dummies[i] = NewMessageInstance(m, abs)
		abs++
	}
	messages := make([]*MessageInstance, len(f.Messages))
	for i, m := range f.Messages {
		messages[i] = NewMessageInstance(m, abs)
		abs++
	}
	return &FrameInstance{
		startByte:     f.StartByte,
		endByte:       f.EndByte,
		threadName:    f.ThreadName,
		absIndex:      absIndex,
		Messages:      messages,
		DummyMessages: dummies,
	}
}

func (f *FrameInstance) StartByte() int64   { return f.startByte }
func (f *FrameInstance) EndByte() int64     { return f.endByte }
func (f *FrameInstance) ThreadName() string { return f.threadName }
func (f *FrameInstance) AbsIndex() uint64   { return f.absIndex }

// FrameAccessor is a cursor-style, index-file-backed view over a set of
// frames. Its children are resolved as a MessageAccessor ranging over the
// frame's own [firstMsgAbsIndex, endMsgAbsIndex) window.
type FrameAccessor struct {
	files        recindex.Files
	messageFiles recindex.Files
	cursor       *Cursor
	reader       *stream.Reader
	decoder      *value.Decoder
	table        *frame.MessageIDTable
	cacheCap     int
}

// NewFrameAccessor constructs an Accessor over indexMap.
func NewFrameAccessor(files, messageFiles recindex.Files, indexMap IndexMap, reader *stream.Reader, decoder *value.Decoder, table *frame.MessageIDTable, cacheCap int) *FrameAccessor {
	return &FrameAccessor{
		files:        files,
		messageFiles: messageFiles,
		cursor:       NewCursor(indexMap),
		reader:       reader,
		decoder:      decoder,
		table:        table,
		cacheCap:     cacheCap,
	}
}

func (a *FrameAccessor) Index() int                   { return a.cursor.Index() }
func (a *FrameAccessor) AbsIndex() uint64             { return a.cursor.AbsIndex() }
func (a *FrameAccessor) Len() int                     { return a.cursor.Len() }
func (a *FrameAccessor) SetIndex(pos int)             { a.cursor.SetIndex(pos) }
func (a *FrameAccessor) SetAbsIndex(abs uint64) error { return a.cursor.SetAbsIndex(abs) }

func (a *FrameAccessor) entry() (recindex.FrameEntry, error) {
	return a.files.ReadFrameEntry(a.cursor.AbsIndex())
}

func (a *FrameAccessor) StartByte() int64 {
	msgs := a.Messages()
	if msgs.Len() == 0 {
		return 0
	}
	msgs.SetIndex(0)
	return msgs.StartByte()
}

func (a *FrameAccessor) EndByte() int64 {
	msgs := a.Messages()
	n := msgs.Len()
	if n == 0 {
		return 0
	}
	msgs.SetIndex(n - 1)
	return msgs.EndByte()
}

func (a *FrameAccessor) ThreadName() string {
	e, _ := a.entry()
	return e.ThreadName
}

// Messages returns a MessageAccessor ranging over exactly this frame's
// [firstMsgAbsIndex, endMsgAbsIndex) window.
func (a *FrameAccessor) Messages() *MessageAccessor {
	e, _ := a.entry()
	rng := RangeIndexMap{Low: uint64(e.FirstMsgAbsIndex), High: uint64(e.EndMsgAbsIndex)}
	return NewMessageAccessor(a.messageFiles, rng, a.reader, a.decoder, a.table, a.cacheCap)
}

// ToInstance builds a fully-owned snapshot of the frame the cursor
// currently refers to, decoding no representations (those load lazily the
// same as any freshly-converted Instance).
func (a *FrameAccessor) ToInstance() (*FrameInstance, error) {
	e, err := a.entry()
	if err != nil {
		return nil, err
	}
	msgs := a.Messages()
	n := msgs.Len()
	instances := make([]*MessageInstance, 0, n)
	var startByte, endByte int64
	for i := 0; i < n; i++ {
		msgs.SetIndex(i)
		inst, err := msgs.ToInstance()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			startByte = inst.StartByte()
		}
		if i == n-1 {
			endByte = inst.EndByte()
		}
		instances = append(instances, inst)
	}
	return &FrameInstance{
		startByte:  startByte,
		endByte:    endByte,
		threadName: e.ThreadName,
		absIndex:   a.cursor.AbsIndex(),
		Messages:   instances,
	}, nil
}
