package logtree

import (
	"github.com/badger-rl/logreader/internal/frame"
	"github.com/badger-rl/logreader/internal/recindex"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/badger-rl/logreader/internal/value"
)

// MessageView is the capability set shared by MessageInstance and
// MessageAccessor (spec §9 Design Notes: "Instance vs. Accessor
// polymorphism").
type MessageView interface {
	StartByte() int64
	EndByte() int64
	ClassName() string
	AbsIndex() uint64
	AsDict() any
}

// MessageInstance is an owning, self-contained snapshot of one message.
type MessageInstance struct {
	startByte int64
	endByte   int64
	logID     int
	className string
	absIndex  uint64
	Repr      value.Value
	hasRepr   bool
}

// NewMessageInstance builds an owned snapshot from a freshly parsed
// frame.Message.
func NewMessageInstance(m frame.Message, absIndex uint64) *MessageInstance {
	return &MessageInstance{
		startByte: m.StartByte,
		endByte:   m.EndByte,
		logID:     m.LogID,
		className: m.ClassName,
		absIndex:  absIndex,
	}
}

func (m *MessageInstance) StartByte() int64  { return m.startByte }
func (m *MessageInstance) EndByte() int64    { return m.endByte }
func (m *MessageInstance) LogID() int        { return m.logID }
func (m *MessageInstance) ClassName() string { return m.className }
func (m *MessageInstance) AbsIndex() uint64  { return m.absIndex }

// SetRepr attaches a parsed representation to this instance.
func (m *MessageInstance) SetRepr(v value.Value) {
	m.Repr = v
	m.hasRepr = true
}

// IsParsed reports whether a representation has been attached.
func (m *MessageInstance) IsParsed() bool { return m.hasRepr }

func (m *MessageInstance) AsDict() any {
	if !m.hasRepr {
		return nil
	}
	return m.Repr.AsDict()
}

// MessageAccessor is a cursor-style, index-file-backed view over a set of
// messages. Random access is O(1) via the index file; representations are
// decoded lazily on first request and cached in a bounded LRU.
type MessageAccessor struct {
	files   recindex.Files
	cursor  *Cursor
	reader  *stream.Reader // shared view of the memory-mapped log
	decoder *value.Decoder
	table   *frame.MessageIDTable
	cache   *ReprCache
}

// NewMessageAccessor constructs an Accessor over indexMap, sharing reader
// (the memory-mapped log) and cache capacity across calls.
func NewMessageAccessor(files recindex.Files, indexMap IndexMap, reader *stream.Reader, decoder *value.Decoder, table *frame.MessageIDTable, cacheCapacity int) *MessageAccessor {
	return &MessageAccessor{
		files:   files,
		cursor:  NewCursor(indexMap),
		reader:  reader,
		decoder: decoder,
		table:   table,
		cache:   NewReprCache(cacheCapacity),
	}
}

// Index is the cursor's position within its IndexMap.
func (a *MessageAccessor) Index() int { return a.cursor.Index() }

// AbsIndex is the absolute message index the cursor currently refers to.
func (a *MessageAccessor) AbsIndex() uint64 { return a.cursor.AbsIndex() }

// Len is the number of messages this Accessor ranges over.
func (a *MessageAccessor) Len() int { return a.cursor.Len() }

// SetIndex moves the cursor to a position within the IndexMap.
func (a *MessageAccessor) SetIndex(pos int) { a.cursor.SetIndex(pos) }

// SetAbsIndex moves the cursor to the entry with the given absolute index.
func (a *MessageAccessor) SetAbsIndex(abs uint64) error { return a.cursor.SetAbsIndex(abs) }

func (a *MessageAccessor) entry() (recindex.MessageEntry, error) {
	return a.files.ReadMessageEntry(a.cursor.AbsIndex())
}

// StartByte is the absolute byte offset of the message's header.
func (a *MessageAccessor) StartByte() int64 {
	e, _ := a.entry()
	return int64(e.StartByte)
}

// EndByte is the absolute byte offset just past the message's payload.
func (a *MessageAccessor) EndByte() int64 {
	e, _ := a.entry()
	return int64(e.EndByte)
}

// FrameAbsIndex is the absolute index of the frame this message belongs to.
func (a *MessageAccessor) FrameAbsIndex() uint64 {
	e, _ := a.entry()
	return e.FrameAbsIndex
}

// LogID reads the message's log-local ID byte directly from the mapped log
// (the index entry itself does not store it).
func (a *MessageAccessor) LogID() int {
	buf, err := a.reader.PeekAt(a.StartByte(), 1)
	if err != nil {
		return -1
	}
	return int(buf[0])
}

// ClassName is the bare representation class name for this message.
func (a *MessageAccessor) ClassName() string {
	return a.table.ClassName(a.LogID())
}

// IsParsed reports whether this message's representation is already cached.
func (a *MessageAccessor) IsParsed() bool {
	return a.cache.IsParsed(a.cursor.AbsIndex())
}

// Cache exposes the Accessor's bounded representation cache so the
// parse-and-cache pipeline (internal/pipeline) can bulk-populate it after a
// parallel decode batch, keyed by absolute message index.
func (a *MessageAccessor) Cache() *ReprCache {
	return a.cache
}

// Files exposes the Accessor's backing message index file for the pipeline
// to enumerate entries directly.
func (a *MessageAccessor) Files() recindex.Files {
	return a.files
}

// Table exposes the Accessor's MessageID table.
func (a *MessageAccessor) Table() *frame.MessageIDTable {
	return a.table
}

// Repr returns the cached representation, decoding and caching it on first
// access.
func (a *MessageAccessor) Repr() (value.Value, error) {
	abs := a.cursor.AbsIndex()
	if v, ok := a.cache.Get(abs); ok {
		return v, nil
	}
	e, err := a.entry()
	if err != nil {
		return value.Value{}, err
	}
	className := a.table.ClassName(a.LogID())
	a.reader.Seek(int64(e.StartByte) + 4)
	var v value.Value
	if className == value.TypeFrameBegin || className == value.TypeFrameFinished {
		v, err = a.decoder.DecodeFrameSentinel(className, a.reader, int64(e.EndByte))
	} else {
		v, err = a.decoder.DecodeBounded(schema.TypeExpr{Base: className}, a.reader, int64(e.EndByte))
	}
	if err != nil {
		return value.Value{}, err
	}
	a.cache.Put(abs, v)
	return v, nil
}

// AsDict decodes (if needed) and returns the attribute-map view of this
// message's representation.
func (a *MessageAccessor) AsDict() any {
	v, err := a.Repr()
	if err != nil {
		return nil
	}
	return v.AsDict()
}

// ToInstance builds a fully-owned snapshot of the message the cursor
// currently refers to.
func (a *MessageAccessor) ToInstance() (*MessageInstance, error) {
	e, err := a.entry()
	if err != nil {
		return nil, err
	}
	inst := &MessageInstance{
		startByte: int64(e.StartByte),
		endByte:   int64(e.EndByte),
		logID:     a.LogID(),
		className: a.ClassName(),
		absIndex:  e.AbsIndex,
	}
	if v, ok := a.cache.Get(e.AbsIndex); ok {
		inst.SetRepr(v)
	}
	return inst, nil
}
