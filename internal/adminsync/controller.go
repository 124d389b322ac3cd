package adminsync

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Phase is the lifecycle of a managed list view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseLoadFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseLoadFailed:
		return "load_failed"
	}
	return "unknown"
}

// Modal is the transient edit surface currently open over the list.
// At most one modal may be open at a time.
type Modal int

const (
	ModalNone Modal = iota
	ModalCreating
	ModalEditing
	ModalConfirmingDelete
)

func (m Modal) String() string {
	switch m {
	case ModalNone:
		return "none"
	case ModalCreating:
		return "creating"
	case ModalEditing:
		return "editing"
	case ModalConfirmingDelete:
		return "confirming_delete"
	}
	return "unknown"
}

var (
	ErrModalOpen      = errors.New("another dialog is already open")
	ErrNoModal        = errors.New("no dialog is open")
	ErrWrongModal     = errors.New("operation does not match the open dialog")
	ErrDeleteInFlight = errors.New("delete request already in flight")
)

// Client is the remote surface a Controller drives. List refreshes the
// whole view, the mutations apply a single row change. Mutation errors
// are classified with IsRecoverable to decide how they surface.
type Client[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, id int64, item T) error
	Delete(ctx context.Context, id int64) error
}

// Controller keeps one rendered list consistent with the store. Every
// successful mutation is followed by a full re-fetch, never a local
// patch, so server-assigned fields always come back canonical.
//
// Fetches carry a monotonically increasing token. A response is applied
// only when its token is still the newest issued one, which makes the
// view latest-issued-wins when responses arrive out of order.
type Controller[T any] struct {
	mu sync.Mutex

	client   Client[T]
	notifier *Notifier

	phase Phase
	rows  []T
	err   error

	modal    Modal
	editing  *T
	deleteID int64
	deleting bool

	fetchSeq uint64
}

func NewController[T any](client Client[T], notifier *Notifier) *Controller[T] {
	return &Controller[T]{
		client:   client,
		notifier: notifier,
		phase:    PhaseIdle,
	}
}

func (s *Controller[T]) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Controller[T]) Modal() Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal
}

// Rows returns the currently rendered rows.
func (s *Controller[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

func (s *Controller[T]) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DeleteBusy reports whether a destructive call is outstanding. The
// confirm control stays disabled while it returns true.
func (s *Controller[T]) DeleteBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting
}

// StartFetch marks the view loading and returns the token the eventual
// response must present to CompleteFetch.
func (s *Controller[T]) StartFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq++
	s.phase = PhaseLoading
	return s.fetchSeq
}

// CompleteFetch applies a fetch outcome. A response whose token is no
// longer the newest issued one is dropped and false is returned.
func (s *Controller[T]) CompleteFetch(token uint64, rows []T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.fetchSeq {
		return false
	}
	if err != nil {
		s.phase = PhaseLoadFailed
		s.err = err
		return true
	}
	s.phase = PhaseLoaded
	s.rows = rows
	s.err = nil
	return true
}

// Refresh issues a list fetch and applies the response unless a newer
// fetch superseded it in the meantime.
func (s *Controller[T]) Refresh(ctx context.Context) error {
	token := s.StartFetch()
	rows, err := s.client.List(ctx)
	if !s.CompleteFetch(token, rows, err) {
		return nil
	}
	if err != nil {
		s.notifier.Failure(FailureMessage(err))
	}
	return err
}

// OpenCreate opens the create dialog. Fails if any dialog is open.
func (s *Controller[T]) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal != ModalNone {
		return ErrModalOpen
	}
	s.modal = ModalCreating
	return nil
}

// OpenEdit opens the edit dialog seeded with row.
func (s *Controller[T]) OpenEdit(row T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal != ModalNone {
		return ErrModalOpen
	}
	s.modal = ModalEditing
	s.editing = &row
	return nil
}

// OpenDelete opens the confirmation dialog for id. Deletion never
// reaches the remote store without passing through this step.
func (s *Controller[T]) OpenDelete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal != ModalNone {
		return ErrModalOpen
	}
	s.modal = ModalConfirmingDelete
	s.deleteID = id
	return nil
}

func (s *Controller[T]) Editing() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// CloseModal dismisses whichever dialog is open without touching the
// list. Closing while a delete is outstanding is refused.
func (s *Controller[T]) CloseModal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == ModalNone {
		return ErrNoModal
	}
	if s.deleting {
		return ErrDeleteInFlight
	}
	s.modal = ModalNone
	s.editing = nil
	s.deleteID = 0
	return nil
}

// SubmitCreate sends the create dialog's value. On success the dialog
// closes and the list re-fetches; on failure the dialog stays open and
// the rendered rows are untouched.
func (s *Controller[T]) SubmitCreate(ctx context.Context, item T) error {
	if err := s.requireModal(ModalCreating); err != nil {
		return err
	}
	if err := s.client.Create(ctx, item); err != nil {
		s.notifier.Failure(FailureMessage(err))
		return err
	}
	s.closeModal()
	s.notifier.Success("created")
	return s.Refresh(ctx)
}

// SubmitEdit sends the edit dialog's value for id.
func (s *Controller[T]) SubmitEdit(ctx context.Context, id int64, item T) error {
	if err := s.requireModal(ModalEditing); err != nil {
		return err
	}
	if err := s.client.Update(ctx, id, item); err != nil {
		s.notifier.Failure(FailureMessage(err))
		return err
	}
	s.closeModal()
	s.notifier.Success("updated")
	return s.Refresh(ctx)
}

// ConfirmDelete performs the confirmed destructive call. The control is
// disabled for the duration so a second confirmation cannot race the
// first.
func (s *Controller[T]) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if s.modal != ModalConfirmingDelete {
		s.mu.Unlock()
		return ErrWrongModal
	}
	if s.deleting {
		s.mu.Unlock()
		return ErrDeleteInFlight
	}
	s.deleting = true
	id := s.deleteID
	s.mu.Unlock()

	err := s.client.Delete(ctx, id)

	s.mu.Lock()
	s.deleting = false
	s.mu.Unlock()

	if err != nil {
		s.notifier.Failure(FailureMessage(err))
		return err
	}
	s.closeModal()
	s.notifier.Success("deleted")
	return s.Refresh(ctx)
}

func (s *Controller[T]) requireModal(want Modal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == ModalNone {
		return ErrNoModal
	}
	if s.modal != want {
		return ErrWrongModal
	}
	return nil
}

func (s *Controller[T]) closeModal() {
	s.mu.Lock()
	s.modal = ModalNone
	s.editing = nil
	s.deleteID = 0
	s.mu.Unlock()
}
