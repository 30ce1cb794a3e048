// Package fetch runs the two-phase top-story retrieval and reports it as
// an ordered event stream: one Started, one Progress per settled story,
// then exactly one Completed or Failed before the channel closes.
package fetch

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/hkrnws/internal/debuglog"
	"github.com/pders01/hkrnws/internal/hn"
)

const (
	DefaultStoryLimit = 30
	MaxStoryLimit     = 50
	DefaultFanOut     = 10
	MaxFanOut         = 20
)

// ErrNoStories is the terminal error when the API returns no usable
// stories: an empty ID list, or every detail fetch failed.
var ErrNoStories = errors.New("no stories available")

// Kind tags an Event.
type Kind int

const (
	KindStarted Kind = iota
	KindProgress
	KindCompleted
	KindFailed
)

// Event is a single update from a running fetch. Total is set on Started
// and Progress, Done on Progress, Stories on Completed (original rank
// order), Err on Failed.
type Event struct {
	Kind    Kind
	Done    int
	Total   int
	Stories []*hn.Story
	Err     error
}

type Fetcher struct {
	client     *hn.Client
	storyLimit int
	fanOut     int
}

func New(client *hn.Client) *Fetcher {
	return NewWithLimits(client, DefaultStoryLimit, DefaultFanOut)
}

// NewWithLimits clamps storyLimit to [1, MaxStoryLimit] and fanOut to
// [1, MaxFanOut] so a hostile config cannot hammer the API.
func NewWithLimits(client *hn.Client, storyLimit, fanOut int) *Fetcher {
	return &Fetcher{
		client:     client,
		storyLimit: clamp(storyLimit, 1, MaxStoryLimit),
		fanOut:     clamp(fanOut, 1, MaxFanOut),
	}
}

// Start launches the fetch in the background and returns its event
// channel. The buffer holds a full run's events, so an abandoned fetch
// never blocks and can be dropped without draining. The channel is
// closed after the terminal event.
func (f *Fetcher) Start(ctx context.Context) <-chan Event {
	events := make(chan Event, 2*f.storyLimit+4)
	go f.run(ctx, events)
	return events
}

func (f *Fetcher) run(ctx context.Context, events chan<- Event) {
	defer close(events)

	ids, err := f.client.TopStoryIDs(ctx)
	if err != nil {
		debuglog.Warnf("top stories fetch failed: %v", err)
		events <- Event{Kind: KindFailed, Err: err}
		return
	}
	if len(ids) > f.storyLimit {
		ids = ids[:f.storyLimit]
	}
	if len(ids) == 0 {
		debuglog.Warnf("top stories list is empty")
		events <- Event{Kind: KindFailed, Err: ErrNoStories}
		return
	}

	total := len(ids)
	events <- Event{Kind: KindStarted, Total: total}
	debuglog.Infof("fetching %d stories, fan-out %d", total, f.fanOut)

	// Results land by rank so completion order never reorders stories.
	// The mutex also serializes Progress emission, keeping Done
	// monotonic on the wire.
	results := make([]*hn.Story, total)
	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	g.SetLimit(f.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			story, err := f.client.Story(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				debuglog.Debugf("skipping story %d: %v", id, err)
			} else {
				results[i] = story
			}
			done++
			events <- Event{Kind: KindProgress, Done: done, Total: total}
			return nil
		})
	}

	// Only cancellation surfaces here; individual story failures are
	// skips, not errors.
	if err := g.Wait(); err != nil {
		debuglog.Debugf("fetch cancelled: %v", err)
		events <- Event{Kind: KindFailed, Err: err}
		return
	}

	stories := make([]*hn.Story, 0, total)
	for _, s := range results {
		if s != nil {
			stories = append(stories, s)
		}
	}

	if len(stories) == 0 {
		debuglog.Warnf("all %d story fetches failed", total)
		events <- Event{Kind: KindFailed, Err: ErrNoStories}
		return
	}

	debuglog.Infof("fetch complete: %d/%d stories", len(stories), total)
	events <- Event{Kind: KindCompleted, Stories: stories}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
