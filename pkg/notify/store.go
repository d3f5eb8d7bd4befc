// Package notify carries transient UI signals: a single snackbar slot and a
// queue of yes/no confirmations whose answers callers wait for.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/trusttrade/trusttrade/pkg/logging"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"github.com/trusttrade/trusttrade/pkg/watch"
	"go.uber.org/zap"
)

var (
	ErrConfirmationClosed = errors.New("confirmation dialog closed")
)

// Store is safe for concurrent use. Views read snapshots through Snackbar
// and Confirmation and are told about changes through Subscribe.
type Store struct {
	watch.Notifier

	mu        sync.Mutex
	log       *zap.Logger
	snackbar  v1.Snackbar
	nextSnack uint64

	// queue[0] is the confirmation on screen; the rest wait their turn.
	queue       []*pending
	nextConfirm uint64
	closed      bool
}

type pending struct {
	id     uint64
	opts   v1.ConfirmOptions
	result chan bool
}

func New(log *zap.Logger) *Store {
	return &Store{log: logging.OrNop(log)}
}

// ShowSnackbar replaces whatever snackbar is showing. An empty kind means
// info. Dismissal timing is up to the view; it should call Expire with the
// returned ID when its timer fires.
func (s *Store) ShowSnackbar(message string, kind v1.SnackbarKind) v1.Snackbar {
	if kind == "" {
		kind = v1.SnackbarInfo
	}
	if !kind.Valid() {
		s.log.Warn("unknown snackbar kind, showing as info", zap.String("kind", string(kind)))
		kind = v1.SnackbarInfo
	}

	s.mu.Lock()
	s.nextSnack++
	s.snackbar = v1.Snackbar{ID: s.nextSnack, Message: message, Kind: kind, Open: true}
	sb := s.snackbar
	s.mu.Unlock()

	s.Notify()
	return sb
}

// HideSnackbar closes the snackbar regardless of which one is showing.
func (s *Store) HideSnackbar() {
	s.mu.Lock()
	changed := s.snackbar.Open
	s.snackbar.Open = false
	s.mu.Unlock()

	if changed {
		s.Notify()
	}
}

// Expire closes the snackbar only if it is still the one identified by id,
// so a timer started for a replaced message cannot hide its successor.
func (s *Store) Expire(id uint64) bool {
	s.mu.Lock()
	if s.snackbar.ID != id || !s.snackbar.Open {
		s.mu.Unlock()
		return false
	}
	s.snackbar.Open = false
	s.mu.Unlock()

	s.Notify()
	return true
}

func (s *Store) Snackbar() v1.Snackbar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snackbar
}

// Confirm asks the user a yes/no question and blocks until it is answered.
// While another confirmation is showing the request waits in line and is
// shown once every earlier one is resolved. Cancelling ctx withdraws the
// request and returns ctx.Err().
func (s *Store) Confirm(ctx context.Context, opts v1.ConfirmOptions) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrConfirmationClosed
	}
	s.nextConfirm++
	p := &pending{
		id:     s.nextConfirm,
		opts:   opts.WithDefaults(),
		result: make(chan bool, 1),
	}
	s.queue = append(s.queue, p)
	queued := len(s.queue) - 1
	s.mu.Unlock()

	if queued > 0 {
		s.log.Debug("confirmation queued", zap.String("title", p.opts.Title), zap.Int("ahead", queued))
	}
	s.Notify()

	select {
	case ok, open := <-p.result:
		if !open {
			return false, ErrConfirmationClosed
		}
		return ok, nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	removed := s.remove(p)
	s.mu.Unlock()
	if removed {
		s.Notify()
		return false, ctx.Err()
	}

	// answered or closed while we were giving up; the result is already there
	ok, open := <-p.result
	if !open {
		return false, ErrConfirmationClosed
	}
	return ok, nil
}

// remove must be called with mu held.
func (s *Store) remove(p *pending) bool {
	for i, q := range s.queue {
		if q == p {
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Confirmation returns the confirmation on screen. Open is false when nothing
// is being asked.
func (s *Store) Confirmation() v1.Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return v1.Confirmation{}
	}
	head := s.queue[0]
	return v1.Confirmation{
		ConfirmOptions: head.opts,
		ID:             head.id,
		Open:           true,
		Queued:         len(s.queue) - 1,
	}
}

// Answer resolves the confirmation on screen. The next queued confirmation,
// if any, is shown before the waiting caller wakes up. It reports false when
// there was nothing to answer.
func (s *Store) Answer(ok bool) bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	head := s.queue[0]
	s.queue = s.queue[1:]
	head.result <- ok
	s.mu.Unlock()

	s.Notify()
	return true
}

func (s *Store) Accept() bool { return s.Answer(true) }
func (s *Store) Cancel() bool { return s.Answer(false) }

// Close fails every waiting Confirm with ErrConfirmationClosed and refuses
// new ones.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, p := range s.queue {
		close(p.result)
	}
	s.queue = nil
	s.mu.Unlock()

	s.Notify()
}
