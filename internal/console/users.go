package console

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/pkg/client"
)

// UsersAPI is the slice of the API client the users screen needs.
type UsersAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in client.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, p client.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserForm holds the editable fields of the user form.
type UserForm struct {
	Name   string
	Email  string
	Role   string
	Status string
}

func defaultUserForm() UserForm {
	return UserForm{Role: string(domain.RoleUser), Status: string(domain.StatusActive)}
}

// UsersView is a point-in-time copy of the users screen.
type UsersView struct {
	Phase         Phase
	Users         []domain.User
	Form          FormMode
	Draft         UserForm
	EditID        string
	Submitting    bool
	PendingDelete string
	Banner        Banner
}

// UsersScreen lists users and drives create, edit and delete.
// The mutex guards state only; it is never held across an API call.
type UsersScreen struct {
	api    UsersAPI
	logger zerolog.Logger

	mu            sync.Mutex
	phase         Phase
	users         []domain.User
	form          FormMode
	draft         UserForm
	editID        string
	submitting    bool
	pendingDelete string
	banner        Banner
}

func NewUsersScreen(api UsersAPI, logger zerolog.Logger) *UsersScreen {
	return &UsersScreen{
		api:    api,
		logger: logger.With().Str("screen", "users").Logger(),
		phase:  PhaseLoading,
		draft:  defaultUserForm(),
	}
}

// Load fetches the user list. Whichever response arrives last is kept.
func (s *UsersScreen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()

	users, err := s.api.ListUsers(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Debug().Err(err).Msg("list users failed")
		s.phase = PhaseError
		s.banner = errorBanner(err)
		return err
	}
	s.users = users
	s.phase = PhaseReady
	return nil
}

// OpenCreate opens an empty form with the default role and status.
func (s *UsersScreen) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = FormCreate
	s.draft = defaultUserForm()
	s.editID = ""
}

// OpenEdit opens the form prefilled from a loaded user.
func (s *UsersScreen) OpenEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			s.form = FormEdit
			s.editID = id
			s.draft = UserForm{Name: u.Name, Email: u.Email, Role: string(u.Role), Status: string(u.Status)}
			return nil
		}
	}
	return ErrUnknownEntry
}

func (s *UsersScreen) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = FormClosed
	s.editID = ""
	s.draft = defaultUserForm()
}

// Submit sends the form as a create or a full update, then reloads the list.
// A failed submit keeps the form open.
func (s *UsersScreen) Submit(ctx context.Context, f UserForm) error {
	s.mu.Lock()
	if s.form == FormClosed {
		s.mu.Unlock()
		return ErrFormClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	s.submitting = true
	s.draft = f
	mode, id := s.form, s.editID
	s.mu.Unlock()

	var (
		err     error
		success string
	)
	if mode == FormEdit {
		_, err = s.api.UpdateUser(ctx, id, client.UserPatch{
			Name: &f.Name, Email: &f.Email, Role: &f.Role, Status: &f.Status,
		})
		success = "User updated successfully!"
	} else {
		_, err = s.api.CreateUser(ctx, client.UserInput{
			Name: f.Name, Email: f.Email, Role: f.Role, Status: f.Status,
		})
		success = "User created successfully!"
	}

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.phase = PhaseError
		s.banner = errorBanner(err)
		s.mu.Unlock()
		return err
	}
	s.form = FormClosed
	s.editID = ""
	s.draft = defaultUserForm()
	s.banner = successBanner(success)
	s.mu.Unlock()

	return s.Load(ctx)
}

// RequestDelete marks a loaded user for deletion pending confirmation.
func (s *UsersScreen) RequestDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			s.pendingDelete = id
			return nil
		}
	}
	return ErrUnknownEntry
}

func (s *UsersScreen) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = ""
	s.mu.Unlock()
}

// ConfirmDelete deletes the pending user and reloads the list.
func (s *UsersScreen) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	id := s.pendingDelete
	s.pendingDelete = ""
	s.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	if err := s.api.DeleteUser(ctx, id); err != nil {
		s.mu.Lock()
		s.phase = PhaseError
		s.banner = errorBanner(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.banner = successBanner("User deleted successfully!")
	s.mu.Unlock()
	return s.Load(ctx)
}

// DismissBanner clears the banner. An error phase with loaded data falls
// back to ready.
func (s *UsersScreen) DismissBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = Banner{}
	if s.phase == PhaseError {
		s.phase = PhaseReady
	}
}

func (s *UsersScreen) Snapshot() UsersView {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]domain.User, len(s.users))
	copy(users, s.users)
	return UsersView{
		Phase:         s.phase,
		Users:         users,
		Form:          s.form,
		Draft:         s.draft,
		EditID:        s.editID,
		Submitting:    s.submitting,
		PendingDelete: s.pendingDelete,
		Banner:        s.banner,
	}
}
