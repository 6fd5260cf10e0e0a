package crm

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crm_system/internal/domain"
	"crm_system/internal/session"
	"crm_system/internal/storage"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store := storage.New(filepath.Join(t.TempDir(), "data"))
	svc := NewService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func newSession(username string) *session.Session {
	return &session.Session{
		ID:         "sid-" + username,
		Username:   username,
		Customers:  []domain.Customer{},
		Deals:      []domain.Deal{},
		Activities: []domain.Activity{},
	}
}

func withCustomer(t *testing.T, svc *Service, s *session.Session, name string) {
	t.Helper()
	_, err := svc.AddCustomer(s, CustomerForm{Name: name, Email: name + "@x.com"})
	require.NoError(t, err)
}

func TestAddCustomer_PersistsWithSequentialIDs(t *testing.T) {
	svc, store := newService(t)
	s := newSession("alice")

	for i, name := range []string{"Bob", "Carol", "Dan"} {
		c, err := svc.AddCustomer(s, CustomerForm{Name: name, Email: name + "@x.com", Company: "Acme"})
		require.NoError(t, err)
		assert.Equal(t, i+1, c.ID)
		assert.Equal(t, "2024-06-15", c.CreatedDate)
	}

	saved, err := storage.LoadCollection[domain.Customer](store, "alice", storage.Customers)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for i, c := range saved {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, []string{"Bob", "Carol", "Dan"}, svc.CustomerNames(s))
}

func TestAddCustomer_RequiresNameAndEmail(t *testing.T) {
	svc, store := newService(t)
	s := newSession("alice")

	for _, f := range []CustomerForm{
		{Email: "bob@x.com"},
		{Name: "Bob"},
		{Name: "   ", Email: "bob@x.com"},
	} {
		_, err := svc.AddCustomer(s, f)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Name and email are required!", verr.Msg)
	}

	assert.Empty(t, s.Customers)
	_, statErr := os.Stat(filepath.Join(store.Root(), "alice", "customers.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAddCustomer_AllowsDuplicateNames(t *testing.T) {
	svc, _ := newService(t)
	s := newSession("alice")

	withCustomer(t, svc, s, "Bob")
	withCustomer(t, svc, s, "Bob")

	assert.Len(t, svc.Customers(s), 2)
}

func TestAddDeal(t *testing.T) {
	svc, store := newService(t)
	s := newSession("alice")
	withCustomer(t, svc, s, "Bob")

	d, err := svc.AddDeal(s, DealForm{Title: "Deal1", Customer: "Bob", Value: 500, Status: domain.DealOpen})
	require.NoError(t, err)
	assert.Equal(t, domain.Deal{ID: 1, Title: "Deal1", Customer: "Bob", Value: 500, Status: domain.DealOpen, CreatedDate: "2024-06-15"}, d)

	d2, err := svc.AddDeal(s, DealForm{Title: "Deal2", Customer: "Bob", Value: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, d2.ID)
	assert.Equal(t, domain.DealOpen, d2.Status)

	saved, err := storage.LoadCollection[domain.Deal](store, "alice", storage.Deals)
	require.NoError(t, err)
	assert.Equal(t, svc.Deals(s), saved)
}

func TestAddDeal_Validation(t *testing.T) {
	svc, _ := newService(t)
	s := newSession("alice")

	_, err := svc.AddDeal(s, DealForm{Title: "Deal1", Customer: "Bob", Value: 500})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please add customers first", verr.Msg)

	withCustomer(t, svc, s, "Bob")

	tests := []struct {
		name string
		form DealForm
		msg  string
	}{
		{"missing title", DealForm{Customer: "Bob", Value: 1}, "Please fill in all required fields!"},
		{"zero value", DealForm{Title: "T", Customer: "Bob", Value: 0}, "Please fill in all required fields!"},
		{"negative value", DealForm{Title: "T", Customer: "Bob", Value: -5}, "Please fill in all required fields!"},
		{"missing customer", DealForm{Title: "T", Value: 1}, "Please fill in all required fields!"},
		{"unknown customer", DealForm{Title: "T", Customer: "Zed", Value: 1}, "Unknown customer: Zed"},
		{"bad status", DealForm{Title: "T", Customer: "Bob", Value: 1, Status: "Pending"}, "Invalid deal status: Pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddDeal(s, tt.form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Msg)
		})
	}
	assert.Empty(t, svc.Deals(s))
}

func TestAddActivity(t *testing.T) {
	svc, store := newService(t)
	s := newSession("alice")
	withCustomer(t, svc, s, "Bob")

	a, err := svc.AddActivity(s, ActivityForm{Type: domain.ActivityMeeting, Customer: "Bob", Notes: "kickoff", Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, domain.Activity{ID: 1, Type: domain.ActivityMeeting, Customer: "Bob", Notes: "kickoff", Date: "2024-06-01"}, a)

	a2, err := svc.AddActivity(s, ActivityForm{Customer: "Bob", Notes: "follow up"})
	require.NoError(t, err)
	assert.Equal(t, 2, a2.ID)
	assert.Equal(t, domain.ActivityCall, a2.Type)
	assert.Equal(t, "2024-06-15", a2.Date)

	saved, err := storage.LoadCollection[domain.Activity](store, "alice", storage.Activities)
	require.NoError(t, err)
	assert.Equal(t, svc.Activities(s), saved)
}

func TestAddActivity_Validation(t *testing.T) {
	svc, _ := newService(t)
	s := newSession("alice")
	withCustomer(t, svc, s, "Bob")

	tests := []struct {
		name string
		form ActivityForm
		msg  string
	}{
		{"missing notes", ActivityForm{Customer: "Bob"}, "Please fill in all required fields!"},
		{"unknown customer", ActivityForm{Customer: "Zed", Notes: "n"}, "Unknown customer: Zed"},
		{"bad type", ActivityForm{Type: "Visit", Customer: "Bob", Notes: "n"}, "Invalid activity type: Visit"},
		{"bad date", ActivityForm{Customer: "Bob", Notes: "n", Date: "15/06/2024"}, "Date must be in YYYY-MM-DD format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddActivity(s, tt.form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Msg)
		})
	}
	assert.Empty(t, svc.Activities(s))
}

func TestAdd_PersistFailureKeepsRecordInMemory(t *testing.T) {
	svc, store := newService(t)
	s := newSession("alice")
	// A regular file where the partition directory belongs makes every save fail.
	require.NoError(t, os.MkdirAll(store.Root(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "alice"), []byte("x"), 0o600))

	c, err := svc.AddCustomer(s, CustomerForm{Name: "Bob", Email: "bob@x.com"})
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, storage.Customers, perr.Collection)
	assert.Contains(t, perr.Error(), "Unable to save data: ")
	assert.False(t, errors.As(err, new(*ValidationError)))

	assert.Equal(t, 1, c.ID)
	assert.Len(t, svc.Customers(s), 1)
}

func TestSessions_DoNotShareRecords(t *testing.T) {
	svc, store := newService(t)
	alice, carol := newSession("alice"), newSession("carol")

	withCustomer(t, svc, alice, "Bob")

	assert.Empty(t, svc.Customers(carol))
	saved, err := storage.LoadCollection[domain.Customer](store, "carol", storage.Customers)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestListsAreCopies(t *testing.T) {
	svc, _ := newService(t)
	s := newSession("alice")
	withCustomer(t, svc, s, "Bob")

	list := svc.Customers(s)
	list[0].Name = "Mallory"

	assert.Equal(t, "Bob", svc.Customers(s)[0].Name)
}

// Records are append-only: the service exposes no update or delete path.
func TestService_HasNoUpdateOrDelete(t *testing.T) {
	type updater interface {
		UpdateCustomer(*session.Session, domain.Customer) error
	}
	type deleter interface {
		DeleteCustomer(*session.Session, int) error
	}
	var svc any = &Service{}
	_, canUpdate := svc.(updater)
	_, canDelete := svc.(deleter)
	assert.False(t, canUpdate)
	assert.False(t, canDelete)
}
