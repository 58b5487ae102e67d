package service

import (
	"context"
	"sync"

	"marknotes-be/internal/entity"
	"marknotes-be/internal/repository/contract"
	"marknotes-be/internal/repository/specification"
	"marknotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository fakes. They interpret the same specification types
// the GORM implementations translate to SQL, so service-level filtering
// behavior is exercised without a database.

type fakeStore struct {
	mu    sync.Mutex
	notes map[uuid.UUID]entity.Note
	users map[uuid.UUID]entity.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notes: make(map[uuid.UUID]entity.Note),
		users: make(map[uuid.UUID]entity.User),
	}
}

func (s *fakeStore) Factory() unitofwork.RepositoryFactory {
	return &fakeFactory{store: s}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{store: u.store}
}

func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository {
	return &fakeNoteRepository{store: u.store}
}

type fakeNoteRepository struct {
	store *fakeStore
}

func noteMatches(note entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.OwnedByUser:
			if note.UserId != s.UserID {
				return false
			}
		case specification.ArchivedIs:
			if note.IsArchived != s.Value {
				return false
			}
		case specification.OrderBy:
			// Ordering is irrelevant for these fakes.
		}
	}
	return true
}

func (r *fakeNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notes[note.Id] = *note
	return nil
}

func (r *fakeNoteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notes[note.Id] = *note
	return nil
}

func (r *fakeNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.notes, id)
	return nil
}

func (r *fakeNoteRepository) DeleteAll(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for id, note := range r.store.notes {
		if noteMatches(note, specs) {
			delete(r.store.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeNoteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, note := range r.store.notes {
		if noteMatches(note, specs) {
			found := note
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Note
	for _, note := range r.store.notes {
		if noteMatches(note, specs) {
			found := note
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *fakeNoteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeUserRepository struct {
	store *fakeStore
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		matches := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if user.Id != s.ID {
					matches = false
				}
			case specification.ByLogin:
				if user.Login != s.Login {
					matches = false
				}
			}
		}
		if matches {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.users)), nil
}

// collectingPublisher records every published payload.
type collectingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *collectingPublisher) Publish(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *collectingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// stubPDFEngine returns a fixed payload and counts renders.
type stubPDFEngine struct {
	renders int
	output  []byte
}

func (e *stubPDFEngine) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	e.renders++
	return e.output, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
