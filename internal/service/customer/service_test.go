package customer_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/internal/errs"
	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/customer"
	"github.com/leih-lokal/kiosk-service/internal/store"
)

type fakeStore struct {
	customers []model.Customer
	listed    []store.Query
	created   map[string]any
}

func (f *fakeStore) List(_ context.Context, _ string, q store.Query, out any) error {
	f.listed = append(f.listed, q)
	matching := f.customers
	if q.Filter != "" {
		// the fake answers iid filters exactly and everything else broadly,
		// mirroring a store whose filters are case-sensitive
		matching = filterByIID(f.customers, string(q.Filter))
	}
	b, err := json.Marshal(matching)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeStore) Create(_ context.Context, _ string, fields, out any) error {
	f.created, _ = fields.(map[string]any)
	cust := model.Customer{
		ID:        "new",
		IID:       f.created["iid"].(int),
		FirstName: f.created["firstname"].(string),
		LastName:  f.created["lastname"].(string),
	}
	b, err := json.Marshal(cust)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func filterByIID(customers []model.Customer, filter string) []model.Customer {
	var out []model.Customer
	for _, c := range customers {
		if filter == "iid = "+itoa(c.IID) {
			out = append(out, c)
		}
	}
	return out
}

func itoa(n int) string {
	b, _ := json.Marshal(n) //nolint:errcheck
	return string(b)
}

func newSvc(customers ...model.Customer) (*customer.Service, *fakeStore) {
	fs := &fakeStore{customers: customers}
	return customer.NewService(fs, zap.NewNop()), fs
}

func TestService_Resolve_IID(t *testing.T) {
	t.Parallel()
	ruby := model.Customer{ID: "c1", IID: 427, FirstName: "Ruby", LastName: "Morgan Voigt"}

	t.Run("leading zeros stripped for the exact lookup", func(t *testing.T) {
		t.Parallel()
		svc, fs := newSvc(ruby)
		got, err := svc.Resolve(context.Background(), "0427")
		require.NoError(t, err)
		require.Equal(t, ruby, got)
		require.Equal(t, store.Filter("iid = 427"), fs.listed[0].Filter)
	})

	t.Run("unknown number", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby)
		_, err := svc.Resolve(context.Background(), "9999")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("non-4-digit number routes to name resolution", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby)
		// "42" is a single name token, so the name path rejects it
		_, err := svc.Resolve(context.Background(), "42")
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestService_Resolve_Name(t *testing.T) {
	t.Parallel()
	ruby := model.Customer{ID: "c1", IID: 427, FirstName: "Ruby", LastName: "Morgan Voigt"}
	max := model.Customer{ID: "c2", IID: 428, FirstName: "Max", LastName: "Mustermann"}

	t.Run("two-word name", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby, max)
		got, err := svc.Resolve(context.Background(), "Max Mustermann")
		require.NoError(t, err)
		require.Equal(t, max, got)
	})

	t.Run("three words with multi-word last name", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby, max)
		got, err := svc.Resolve(context.Background(), "Ruby Morgan Voigt")
		require.NoError(t, err)
		require.Equal(t, ruby, got)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby, max)
		got, err := svc.Resolve(context.Background(), "mAx MUSTERMANN")
		require.NoError(t, err)
		require.Equal(t, max, got)
	})

	t.Run("single token", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby, max)
		_, err := svc.Resolve(context.Background(), "Max")
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("no split matches", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(ruby, max)
		_, err := svc.Resolve(context.Background(), "Erika Musterfrau")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_Search(t *testing.T) {
	t.Parallel()
	svc, fs := newSvc()
	_, err := svc.Search(context.Background(), "mu")
	require.NoError(t, err)

	require.Len(t, fs.listed, 1)
	require.Equal(t, "-iid", fs.listed[0].Sort)
	filter := string(fs.listed[0].Filter)
	for _, field := range []string{"iid", "firstname", "lastname", "phone"} {
		require.Contains(t, filter, field+` ~ "mu"`)
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	svc, fs := newSvc(model.Customer{ID: "c9", IID: 1041, FirstName: "A", LastName: "B"})

	created, err := svc.Register(context.Background(), customer.RegisterRequest{
		FirstName: "Erika",
		LastName:  "Musterfrau",
	})
	require.NoError(t, err)
	require.Equal(t, 1042, created.IID)
	require.Equal(t, 1042, fs.created["iid"])
	require.Equal(t, false, fs.created["newsletter"])
	require.NotEmpty(t, fs.created["registered_on"])
}
