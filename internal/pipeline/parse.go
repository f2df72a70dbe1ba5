package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/sync/errgroup"

	"github.com/badger-rl/logreader/internal/logtree"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/badger-rl/logreader/internal/value"
)

// Options controls a ParseAndCache batch.
type Options struct {
	// WorkerCount overrides the default runtime.NumCPU() worker pool size.
	WorkerCount int
	// CacheRepr, if set, persists every newly decoded representation to
	// disk via SaveRepr and consults HasCachedRepr/LoadRepr before
	// re-decoding an already-cached message.
	CacheRepr bool
	// ContinueOnError downgrades a bounded-decode error (§7) to "skip this
	// message" instead of aborting the whole batch.
	ContinueOnError bool
	CacheDir        string
	// OnStopwatch, if set, is invoked once per decoded Stopwatch message,
	// synchronously and never concurrently, so a caller can merge the
	// sample into its per-thread Timer (§4.I) without this package
	// depending on internal/threadview.
	OnStopwatch func(absIndex uint64, v value.Value)
}

// Result summarizes one ParseAndCache batch.
type Result struct {
	Decoded   int
	CacheHits int
	Skipped   int
}

type workItem struct {
	absIndex  uint64
	startByte int64
	endByte   int64
	className string
}

// ParseAndCache decodes every unparsed message's representation reachable
// through messages (an Accessor ranging over the set of messages to
// parse), grounded on spec §4.H's parseBytes: partition into
// already-parsed (in the Accessor's in-memory cache), has-disk-cache, and
// unparsed; decode the unparsed set across a worker pool sized to CPU
// count by default; assign results back into the Accessor's representation
// cache keyed by absolute index, which makes final state independent of
// worker completion order. Each worker opens its own memory map over
// logPath, per spec §5/§6's requirement that workers never share a single
// Stream Reader cursor.
func ParseAndCache(ctx context.Context, logPath string, messages *logtree.MessageAccessor, reg *schema.Registry, opts Options) (Result, error) {
	var result Result
	cache := messages.Cache()
	files := messages.Files()
	table := messages.Table()

	n := messages.Len()
	work := make([]workItem, 0, n)
	for i := 0; i < n; i++ {
		messages.SetIndex(i)
		abs := messages.AbsIndex()
		if cache.IsParsed(abs) {
			result.CacheHits++
			continue
		}
		if opts.CacheRepr && HasCachedRepr(opts.CacheDir, abs) {
			if v, err := LoadRepr(opts.CacheDir, abs); err == nil {
				cache.Put(abs, v)
				result.CacheHits++
				continue
			}
		}
		e, err := files.ReadMessageEntry(abs)
		if err != nil {
			return result, err
		}
		className := table.ClassName(messages.LogID())
		work = append(work, workItem{
			absIndex:  abs,
			startByte: int64(e.StartByte),
			endByte:   int64(e.EndByte),
			className: className,
		})
	}

	if len(work) == 0 {
		return result, nil
	}

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	type decoded struct {
		v  value.Value
		ok bool
	}
	results := make([]decoded, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)
	for idx, item := range work {
		idx, item := idx, item
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			f, err := os.Open(logPath)
			if err != nil {
				return err
			}
			defer f.Close()
			m, err := mmap.Map(f, mmap.RDONLY, 0)
			if err != nil {
				return err
			}
			defer m.Unmap()

			r := stream.New(m)
			r.Seek(item.startByte + 4)
			dec := value.NewDecoder(reg)

			var v value.Value
			var derr error
			if item.className == value.TypeFrameBegin || item.className == value.TypeFrameFinished {
				v, derr = dec.DecodeFrameSentinel(item.className, r, item.endByte)
			} else {
				v, derr = dec.DecodeBounded(schema.TypeExpr{Base: item.className}, r, item.endByte)
			}
			if derr != nil {
				if opts.ContinueOnError {
					return nil
				}
				return fmt.Errorf("decode message %d (%s): %w", item.absIndex, item.className, derr)
			}
			results[idx] = decoded{v: v, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for i, d := range results {
		if !d.ok {
			result.Skipped++
			continue
		}
		abs := work[i].absIndex
		cache.Put(abs, d.v)
		result.Decoded++
		if d.v.TypeName == value.TypeStopwatch && opts.OnStopwatch != nil {
			opts.OnStopwatch(abs, d.v)
		}
		if opts.CacheRepr {
			if err := SaveRepr(opts.CacheDir, abs, d.v); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}
