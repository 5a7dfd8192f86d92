package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	accountsrepo "github.com/dmitrijs2005/picshare/internal/server/repositories/accounts"
	photosrepo "github.com/dmitrijs2005/picshare/internal/server/repositories/photos"
	sharetasksrepo "github.com/dmitrijs2005/picshare/internal/server/repositories/sharetasks"
	"github.com/google/uuid"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// ctxWithCaller returns a context authenticated as the given identity.
func ctxWithCaller(identity models.Identity) context.Context {
	return auth.WithCaller(context.Background(), &auth.Caller{Token: "tok", Identity: identity})
}

type fakeResolver struct {
	id string
	ok bool
}

func (f *fakeResolver) SubjectID(ctx context.Context) (string, bool) { return f.id, f.ok }

type fakeAccountsRepo struct {
	getOut *models.Account
	getErr error

	createErr      error
	createConflict bool
	created        []*models.Account

	placeholderErr     error
	placeholdersMade   []string
	setIdentityErr     error
	identitiesSet      map[string]models.Identity
	addMembershipErr   error
	membershipsAdded   [][2]string
	membershipAttempts int
}

func (f *fakeAccountsRepo) Get(ctx context.Context, subjectID string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeAccountsRepo) Create(ctx context.Context, account *models.Account) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.createConflict {
		return false, nil
	}
	f.created = append(f.created, account)
	return true, nil
}

func (f *fakeAccountsRepo) CreatePlaceholder(ctx context.Context, subjectID string) error {
	if f.placeholderErr != nil {
		return f.placeholderErr
	}
	f.placeholdersMade = append(f.placeholdersMade, subjectID)
	return nil
}

func (f *fakeAccountsRepo) SetIdentity(ctx context.Context, subjectID string, identity models.Identity) error {
	if f.setIdentityErr != nil {
		return f.setIdentityErr
	}
	if f.identitiesSet == nil {
		f.identitiesSet = map[string]models.Identity{}
	}
	f.identitiesSet[subjectID] = identity
	return nil
}

func (f *fakeAccountsRepo) AddMembership(ctx context.Context, subjectID, sharingSubjectID string) error {
	f.membershipAttempts++
	if f.addMembershipErr != nil {
		return f.addMembershipErr
	}
	f.membershipsAdded = append(f.membershipsAdded, [2]string{subjectID, sharingSubjectID})
	return nil
}

type fakePhotosRepo struct {
	createOut *models.Photo
	createErr error

	getOut *models.Photo
	getErr error

	updateErr  error
	updated    []*models.Photo
	touchErr   error
	touched    []int64
	deleteErr  error
	deleted    []int64
	aclAdded   bool
	aclErr     error
	aclEntries [][2]any

	listOut    []*models.Photo
	listErr    error
	lastFilter photosrepo.ListFilter
}

func (f *fakePhotosRepo) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	photo.ID = 100
	photo.Updated = time.Now()
	photo.FromStore = true
	return photo, nil
}

func (f *fakePhotosRepo) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakePhotosRepo) Update(ctx context.Context, photo *models.Photo) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, photo)
	return nil
}

func (f *fakePhotosRepo) Touch(ctx context.Context, id int64) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakePhotosRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePhotosRepo) AddACLEntry(ctx context.Context, photoID int64, subjectID string) (bool, error) {
	if f.aclErr != nil {
		return false, f.aclErr
	}
	f.aclEntries = append(f.aclEntries, [2]any{photoID, subjectID})
	return f.aclAdded, nil
}

func (f *fakePhotosRepo) List(ctx context.Context, filter photosrepo.ListFilter) ([]*models.Photo, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeShareTasksRepo struct {
	enqueueErr error
	enqueued   []*models.ShareTask

	dueOut []*models.ShareTask
	dueErr error

	completeErr error
	completed   []uuid.UUID
	failErr     error
	failed      []uuid.UUID
}

func (f *fakeShareTasksRepo) Enqueue(ctx context.Context, task *models.ShareTask) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, task)
	return nil
}

func (f *fakeShareTasksRepo) DueBatch(ctx context.Context, limit int) ([]*models.ShareTask, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.dueOut, nil
}

func (f *fakeShareTasksRepo) Complete(ctx context.Context, id uuid.UUID) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeShareTasksRepo) Fail(ctx context.Context, id uuid.UUID) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.failed = append(f.failed, id)
	return nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	p *fakePhotosRepo
	t *fakeShareTasksRepo
}

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository     { return m.a }
func (m *fakeRepoManager) Photos(db dbx.DBTX) photosrepo.Repository         { return m.p }
func (m *fakeRepoManager) ShareTasks(db dbx.DBTX) sharetasksrepo.Repository { return m.t }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
