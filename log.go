// Package logreader parses and navigates the binary log files produced by
// a humanoid-robot control framework's logging daemon: a self-describing
// type system (internal/schema), a frame/message parser
// (internal/frame), a two-tier Instance/Accessor object model backed by a
// persistent on-disk index (internal/recindex, internal/logtree), and a
// parallel parse-and-cache pipeline (internal/pipeline). Open is the sole
// entry point.
package logreader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/badger-rl/logreader/internal/chunkio"
	"github.com/badger-rl/logreader/internal/frame"
	"github.com/badger-rl/logreader/internal/logtree"
	"github.com/badger-rl/logreader/internal/pipeline"
	"github.com/badger-rl/logreader/internal/recindex"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/badger-rl/logreader/internal/threadview"
	"github.com/badger-rl/logreader/internal/value"
)

// Log is the Root Log (spec §4.J): it binds the memory-mapped log file,
// the cache directory, the decoded type registry, and the on-disk index
// files, and validates/repairs the index on open.
type Log struct {
	opts options

	path string
	file *os.File
	data mmap.MMap

	reader   *stream.Reader
	registry *schema.Registry
	table    *frame.MessageIDTable
	decoder  *value.Decoder

	settings chunkio.Settings
	files    recindex.Files

	threadView *threadview.ThreadView
	timer      *threadview.Timer
	timestamps []*int64 // frame abs index -> timestamp, see Timestamp
}

// Open reads path's Settings, TypeInfo, and Uncompressed chunks in order,
// validating and repairing the on-disk index files before resuming or
// fully evaluating the Uncompressed chunk's frame stream (§4.J).
func Open(path string, opts ...Option) (*Log, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheDir == "" {
		o.cacheDir = defaultCacheDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap log: %w", err)
	}

	l := &Log{
		opts:     o,
		path:     path,
		file:     f,
		data:     data,
		reader:   stream.New(data),
		registry: schema.NewRegistry(),
		files: recindex.Files{
			MessagePath: filepath.Join(o.cacheDir, "messageIndexFile.cache"),
			FramePath:   filepath.Join(o.cacheDir, "frameIndexFile.cache"),
		},
	}

	if err := l.eval(); err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	return l, nil
}

func defaultCacheDir(path string) string {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(dir, stem+"_cache")
}

// eval performs the Settings -> TypeInfo -> Uncompressed dispatch chain.
func (l *Log) eval() error {
	if err := os.MkdirAll(l.opts.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	for l.reader.Tell() < l.reader.Len() {
		magic, err := chunkio.Dispatch(l.reader)
		if err != nil {
			return fmt.Errorf("dispatch chunk: %w", err)
		}
		switch magic {
		case chunkio.SettingsMagic:
			l.opts.logger.Debugf("evaluating Settings chunk at byte %d", l.reader.Tell())
			s, err := chunkio.ReadSettings(l.reader)
			if err != nil {
				return fmt.Errorf("read settings: %w", err)
			}
			l.settings = s
		case chunkio.TypeInfoMagic:
			l.opts.logger.Debugf("evaluating TypeInfo chunk at byte %d", l.reader.Tell())
			if err := chunkio.ReadTypeInfo(l.reader, l.registry); err != nil {
				return fmt.Errorf("read type info: %w", err)
			}
			table, err := frame.NewMessageIDTable(l.registry)
			if err != nil {
				return fmt.Errorf("build message id table: %w", err)
			}
			l.table = table
			l.decoder = value.NewDecoder(l.registry)
		case chunkio.UncompressedMagic:
			if err := l.evalUncompressed(); err != nil {
				return fmt.Errorf("eval uncompressed chunk: %w", err)
			}
		}
	}
	return nil
}

func (l *Log) evalUncompressed() error {
	hdr, err := chunkio.ReadUncompressedHeader(l.reader)
	if err != nil {
		return err
	}
	chunkStart := l.reader.Tell()
	chunkEnd := chunkStart + hdr.FrameBytes

	valid, truncated, err := l.files.EnsureValid()
	if err != nil {
		return fmt.Errorf("validate index files: %w", err)
	}
	if truncated > 0 {
		l.opts.logger.Infof("index repair discarded %d trailing frame(s)", truncated)
	}
	if !valid {
		if err := l.files.Delete(); err != nil {
			return fmt.Errorf("delete corrupt index: %w", err)
		}
	}

	messageCount, err := l.files.MessageCount()
	if err != nil {
		return err
	}
	frameCount, err := l.files.FrameCount()
	if err != nil {
		return err
	}

	resumeByte := chunkStart
	if messageCount > 0 {
		last, err := l.files.ReadMessageEntry(uint64(messageCount) - 1)
		if err != nil {
			return err
		}
		resumeByte = int64(last.EndByte)
	}
	l.reader.Seek(resumeByte)

	l.opts.logger.Infof("resuming uncompressed eval at byte %d (messages=%d frames=%d)", resumeByte, messageCount, frameCount)

	result, err := pipeline.EvalUncompressed(l.reader, chunkEnd, l.table, l.files, uint64(messageCount), uint64(frameCount))
	if err != nil {
		return err
	}
	l.opts.logger.Infof("eval complete: %d frames, %d messages parsed", result.FramesParsed, result.MessagesParsed)

	return l.buildThreadView()
}

// buildThreadView re-reads every frame entry's thread name (§4.I), groups
// frames by thread, and, for frames on the predefined timestamped threads,
// decodes the frame's own FrameInfo message to recover its true timestamp.
// Every remaining frame's timestamp is synthesized by BackfillTimestamps.
func (l *Log) buildThreadView() error {
	frameCount, err := l.files.FrameCount()
	if err != nil {
		return err
	}
	frames, err := l.Frames()
	if err != nil {
		return err
	}

	threadNames := make([]string, frameCount)
	stamps := make([]threadview.FrameTimestamp, frameCount)
	for i := int64(0); i < frameCount; i++ {
		frames.SetIndex(int(i))
		name := frames.ThreadName()
		threadNames[i] = name
		stamps[i].ThreadName = name
		if threadview.IsTimestampedThread(name) {
			t, err := frameInfoTimestamp(frames)
			if err != nil {
				return fmt.Errorf("decode FrameInfo for frame %d: %w", i, err)
			}
			if t != nil {
				stamps[i].Timestamp = t
			}
		}
	}
	threadview.BackfillTimestamps(stamps)

	l.timestamps = make([]*int64, frameCount)
	for i := range stamps {
		l.timestamps[i] = stamps[i].Timestamp
	}

	l.threadView = threadview.BuildThreadView(threadNames)
	l.timer = threadview.NewTimer()
	return nil
}

// frameInfoTimestamp scans frameAcc's messages for a FrameInfo
// representation and returns its "time" field, or nil if the frame (despite
// its thread being in the timestamped set) carries none.
func frameInfoTimestamp(frameAcc *logtree.FrameAccessor) (*int64, error) {
	msgs := frameAcc.Messages()
	for i := 0; i < msgs.Len(); i++ {
		msgs.SetIndex(i)
		if msgs.ClassName() != threadview.FrameInfoTypeName {
			continue
		}
		v, err := msgs.Repr()
		if err != nil {
			return nil, err
		}
		if t, ok := threadview.TimestampFromFrameInfo(v); ok {
			return &t, nil
		}
	}
	return nil, nil
}

// Timestamp returns frameAbsIndex's timestamp (a genuine FrameInfo value
// for threads in the timestamped set, a synthesized one for any other
// thread), or nil if no timestamped-thread frame exists anywhere in the
// log to backfill from (§4.I).
func (l *Log) Timestamp(frameAbsIndex uint64) *int64 {
	if int(frameAbsIndex) >= len(l.timestamps) {
		return nil
	}
	return l.timestamps[frameAbsIndex]
}

// Settings returns the log's Settings chunk.
func (l *Log) Settings() chunkio.Settings { return l.settings }

// Close releases the memory-mapped log file.
func (l *Log) Close() error {
	if err := l.data.Unmap(); err != nil {
		return err
	}
	return l.file.Close()
}

// Messages returns an Accessor ranging over every message in the log.
func (l *Log) Messages() (*logtree.MessageAccessor, error) {
	n, err := l.files.MessageCount()
	if err != nil {
		return nil, err
	}
	rng := logtree.RangeIndexMap{Low: 0, High: uint64(n)}
	return logtree.NewMessageAccessor(l.files, rng, l.reader, l.decoder, l.table, l.opts.reprCacheCap), nil
}

// Frames returns an Accessor ranging over every frame in the log.
func (l *Log) Frames() (*logtree.FrameAccessor, error) {
	n, err := l.files.FrameCount()
	if err != nil {
		return nil, err
	}
	rng := logtree.RangeIndexMap{Low: 0, High: uint64(n)}
	return logtree.NewFrameAccessor(l.files, l.files, rng, l.reader, l.decoder, l.table, l.opts.reprCacheCap), nil
}

// ParseAll runs the parse-and-cache pipeline (§4.H) over every message in
// the log, wiring Stopwatch samples into the per-thread Timer (§4.I) as
// they're decoded.
func (l *Log) ParseAll(ctx context.Context) (pipeline.Result, error) {
	messages, err := l.Messages()
	if err != nil {
		return pipeline.Result{}, err
	}
	opts := pipeline.Options{
		WorkerCount:     l.opts.workerCount,
		CacheRepr:       true,
		ContinueOnError: l.opts.continueOnError,
		CacheDir:        l.opts.cacheDir,
		OnStopwatch:     l.mergeStopwatch,
	}
	return pipeline.ParseAndCache(ctx, l.path, messages, l.registry, opts)
}

// mergeStopwatch routes a decoded Stopwatch message into its frame's
// Timer, resolving the owning frame's thread name and threadIndex from
// the message's own index entry.
func (l *Log) mergeStopwatch(absIndex uint64, v value.Value) {
	me, err := l.files.ReadMessageEntry(absIndex)
	if err != nil {
		l.opts.logger.Warningf("stopwatch merge: read message entry %d: %v", absIndex, err)
		return
	}
	fe, err := l.files.ReadFrameEntry(me.FrameAbsIndex)
	if err != nil {
		l.opts.logger.Warningf("stopwatch merge: read frame entry %d: %v", me.FrameAbsIndex, err)
		return
	}
	names, durations, ok := threadview.SamplesFromStopwatch(v)
	if !ok {
		return
	}
	threadIndex := l.threadView.ThreadIndex(int(me.FrameAbsIndex))
	l.timer.Merge(fe.ThreadName, threadIndex, names, durations)
}

// MessageDict returns the attribute-map representation of a message
// accessed through frameAcc/msgAcc, decoding it on demand. For a Stopwatch
// message, the dict is replaced by the aggregated view from the frame's
// Timer, per §4.G.
func (l *Log) MessageDict(frameAcc *logtree.FrameAccessor, msgAcc *logtree.MessageAccessor) (any, error) {
	v, err := msgAcc.Repr()
	if err != nil {
		return nil, err
	}
	if v.TypeName == value.TypeStopwatch {
		threadIndex := l.threadView.ThreadIndex(int(frameAcc.AbsIndex()))
		if sw := l.timer.GetStopwatch(frameAcc.ThreadName(), threadIndex); sw != nil {
			return sw, nil
		}
	}
	return v.AsDict(), nil
}
