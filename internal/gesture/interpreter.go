package gesture

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCommitCancelled = errors.New("swipe commit cancelled")

// Sink receives a decision once its settle delay has elapsed.
type Sink func(Direction)

// Interpreter tracks one card's drag. Methods are safe to call from the
// event loop while a settle timer fires on another goroutine.
type Interpreter struct {
	mu      sync.Mutex
	cfg     Config
	sink    Sink
	state   State
	startX  float64
	offsetX float64
	commit  *Commit
}

func New(cfg Config, sink Sink) *Interpreter {
	return &Interpreter{
		cfg:  cfg.withDefaults(),
		sink: sink,
	}
}

func (i *Interpreter) Config() Config {
	return i.cfg
}

func (i *Interpreter) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Interpreter) Offset() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.offsetX
}

// Begin starts tracking a drag at pointer position x. Calling it again while
// dragging restarts from the new position.
func (i *Interpreter) Begin(x float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state == Committing {
		return ErrSettling
	}
	i.state = Dragging
	i.startX = x
	i.offsetX = 0
	return nil
}

// Move updates the offset and returns the rendering hint. Outside a drag it
// changes nothing and returns the neutral hint.
func (i *Interpreter) Move(x float64) Hint {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Dragging {
		return i.cfg.HintFor(0)
	}
	i.offsetX = x - i.startX
	return i.cfg.HintFor(i.offsetX)
}

// Release ends the drag. Past the threshold it commits the decision and
// returns the pending delivery; otherwise the card snaps back and Release
// returns nil.
func (i *Interpreter) Release() *Commit {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Dragging {
		return nil
	}

	offset := i.offsetX
	direction := i.cfg.Decide(offset)
	if direction == None {
		i.resetLocked()
		return nil
	}
	return i.commitLocked(direction, offset)
}

// Cancel aborts a drag without a decision, e.g. when the pointer leaves the card.
func (i *Interpreter) Cancel() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state == Dragging {
		i.resetLocked()
	}
}

// Force commits direction without a drag, as the explicit accept and reject
// buttons do. Any drag in progress is discarded.
func (i *Interpreter) Force(direction Direction) (*Commit, error) {
	if direction != Accept && direction != Reject {
		return nil, ErrNoDirection
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state == Committing {
		return nil, ErrSettling
	}
	return i.commitLocked(direction, 0), nil
}

func (i *Interpreter) commitLocked(direction Direction, offset float64) *Commit {
	commit := &Commit{
		owner:     i,
		direction: direction,
		offset:    offset,
		done:      make(chan struct{}),
	}
	i.state = Committing
	i.startX = 0
	i.offsetX = 0
	i.commit = commit
	commit.timer = time.AfterFunc(i.cfg.SettleDelay, commit.deliver)
	return commit
}

func (i *Interpreter) resetLocked() {
	i.state = Idle
	i.startX = 0
	i.offsetX = 0
	i.commit = nil
}

// Commit is a decision that has been made but not yet delivered.
type Commit struct {
	owner     *Interpreter
	direction Direction
	offset    float64
	timer     *time.Timer
	done      chan struct{}
	cancelled bool
}

func (c *Commit) Direction() Direction {
	return c.direction
}

// Offset is the drag offset at release; zero for forced decisions.
func (c *Commit) Offset() float64 {
	return c.offset
}

// Done is closed once the commit is cancelled, or delivered and the sink has
// returned.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until delivery and returns the decision, or ErrCommitCancelled
// if the commit was cancelled first.
func (c *Commit) Wait(ctx context.Context) (Direction, error) {
	select {
	case <-c.done:
		if c.cancelled {
			return None, ErrCommitCancelled
		}
		return c.direction, nil
	case <-ctx.Done():
		return None, ctx.Err()
	}
}

// Cancel stops a pending delivery and returns the interpreter to Idle. It
// reports false if the decision was already delivered or cancelled.
func (c *Commit) Cancel() bool {
	i := c.owner
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.commit != c {
		return false
	}
	c.timer.Stop()
	i.resetLocked()
	c.cancelled = true
	close(c.done)
	return true
}

func (c *Commit) deliver() {
	i := c.owner
	i.mu.Lock()
	if i.commit != c {
		i.mu.Unlock()
		return
	}
	i.resetLocked()
	sink := i.sink
	i.mu.Unlock()

	if sink != nil {
		sink(c.direction)
	}
	close(c.done)
}
