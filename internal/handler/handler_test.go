package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/internal/errs"
	"github.com/leih-lokal/kiosk-service/internal/handler"
	service_mocks "github.com/leih-lokal/kiosk-service/internal/handler/mocks"
	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
	"github.com/leih-lokal/kiosk-service/internal/service/reservation"
	"github.com/leih-lokal/kiosk-service/internal/session"
)

type mocks struct {
	catalog     *service_mocks.MockCatalogService
	customer    *service_mocks.MockCustomerService
	reservation *service_mocks.MockReservationService
	sessions    *service_mocks.MockSessionStore
}

func newRouter(t *testing.T) (*mocks, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	m := &mocks{
		catalog:     service_mocks.NewMockCatalogService(ctrl),
		customer:    service_mocks.NewMockCustomerService(ctrl),
		reservation: service_mocks.NewMockReservationService(ctrl),
		sessions:    service_mocks.NewMockSessionStore(ctrl),
	}
	h := handler.New(m.catalog, m.customer, m.reservation, m.sessions, zap.NewNop())
	return m, h.NewRouter()
}

func doJSON(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GetAvailability(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					GetAvailability(gomock.Any(), "it1").
					Return(model.Item{ID: "it1", Name: "Beamer", Copies: 2},
						catalog.Availability{Total: 2, Rented: 1, Available: 1}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"available":1`,
		},
		{
			name: "unknown item",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					GetAvailability(gomock.Any(), "it1").
					Return(model.Item{}, catalog.Availability{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "store down",
			mockBehavior: func(m *mocks) {
				m.catalog.EXPECT().
					GetAvailability(gomock.Any(), "it1").
					Return(model.Item{}, catalog.Availability{}, errs.ErrStoreUnavailable)
			},
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, router := newRouter(t)
			tt.mockBehavior(m)

			w := doJSON(router, http.MethodGet, "/api/v1/items/it1/availability", "")
			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestHandler_ResolveCustomer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		body         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name: "found by iid",
			body: `{"input":"0427"}`,
			mockBehavior: func(m *mocks) {
				m.customer.EXPECT().
					Resolve(gomock.Any(), "0427").
					Return(model.Customer{ID: "c1", IID: 427, FirstName: "Ruby", LastName: "Morgan Voigt"}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"display_iid":"0427"`,
		},
		{
			name: "not found",
			body: `{"input":"Erika Musterfrau"}`,
			mockBehavior: func(m *mocks) {
				m.customer.EXPECT().
					Resolve(gomock.Any(), "Erika Musterfrau").
					Return(model.Customer{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "single word",
			body: `{"input":"Erika"}`,
			mockBehavior: func(m *mocks) {
				m.customer.EXPECT().
					Resolve(gomock.Any(), "Erika").
					Return(model.Customer{}, errs.ErrInvalidInput)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "empty input fails validation",
			body:         `{}`,
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, router := newRouter(t)
			tt.mockBehavior(m)

			w := doJSON(router, http.MethodPost, "/api/v1/customers/resolve", tt.body)
			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestHandler_AddSessionItem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name: "added",
			mockBehavior: func(m *mocks) {
				sel := session.Selection{
					ID:         "s1",
					ItemIDs:    []string{"it1"},
					CopyCounts: map[string]int{"it1": 1},
				}
				m.sessions.EXPECT().AddItem(gomock.Any(), "s1", "it1").Return(sel, nil)
				m.catalog.EXPECT().GetItems(gomock.Any(), []string{"it1"}).
					Return([]model.Item{{ID: "it1", Deposit: 20}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"total_deposit":20`,
		},
		{
			name: "fourth item rejected",
			mockBehavior: func(m *mocks) {
				m.sessions.EXPECT().AddItem(gomock.Any(), "s1", "it1").
					Return(session.Selection{}, errs.ErrCapacityExceeded)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "expired session",
			mockBehavior: func(m *mocks) {
				m.sessions.EXPECT().AddItem(gomock.Any(), "s1", "it1").
					Return(session.Selection{}, errs.ErrSessionNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, router := newRouter(t)
			tt.mockBehavior(m)

			w := doJSON(router, http.MethodPost, "/api/v1/sessions/s1/items", `{"item_id":"it1"}`)
			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestHandler_SubmitReservation(t *testing.T) {
	t.Parallel()

	sel := session.Selection{
		ID:         "s1",
		ItemIDs:    []string{"it1", "it2"},
		CopyCounts: map[string]int{"it1": 2, "it2": 1},
	}

	t.Run("new patron", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)

		m.sessions.EXPECT().Get(gomock.Any(), "s1").Return(sel, nil)
		m.reservation.EXPECT().
			Submit(gomock.Any(), reservation.SubmitRequest{
				FreeTextName:  "Max Mustermann",
				IsNewCustomer: true,
				ItemIDs:       sel.ItemIDs,
				CopyCounts:    sel.CopyCounts,
			}).
			Return(model.Reservation{ID: "r1", CustomerName: "Max Mustermann", IsNewCustomer: true}, nil)
		m.sessions.EXPECT().Clear(gomock.Any(), "s1").Return(nil)

		w := doJSON(router, http.MethodPost, "/api/v1/reservations",
			`{"session_id":"s1","customer_input":"Max Mustermann","is_new_customer":true}`)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), `"customer_name":"Max Mustermann"`)
		require.Contains(t, w.Body.String(), `"is_new_customer":true`)
	})

	t.Run("resolved patron", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)
		cust := model.Customer{ID: "c1", IID: 427, FirstName: "Ruby", LastName: "Morgan Voigt"}

		m.sessions.EXPECT().Get(gomock.Any(), "s1").Return(sel, nil)
		m.customer.EXPECT().Resolve(gomock.Any(), "0427").Return(cust, nil)
		m.reservation.EXPECT().
			Submit(gomock.Any(), reservation.SubmitRequest{
				Customer:      &cust,
				FreeTextName:  "0427",
				IsNewCustomer: false,
				ItemIDs:       sel.ItemIDs,
				CopyCounts:    sel.CopyCounts,
			}).
			Return(model.Reservation{ID: "r1", CustomerName: "Ruby Morgan Voigt"}, nil)
		m.sessions.EXPECT().Clear(gomock.Any(), "s1").Return(nil)

		w := doJSON(router, http.MethodPost, "/api/v1/reservations",
			`{"session_id":"s1","customer_input":"0427"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("empty selection", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)

		m.sessions.EXPECT().Get(gomock.Any(), "s1").Return(session.Selection{ID: "s1"}, nil)
		m.reservation.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(model.Reservation{}, errs.ErrNoItemsSelected)

		w := doJSON(router, http.MethodPost, "/api/v1/reservations",
			`{"session_id":"s1","customer_input":"Max Mustermann","is_new_customer":true}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unresolved patron blocks submit", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)

		m.sessions.EXPECT().Get(gomock.Any(), "s1").Return(sel, nil)
		m.customer.EXPECT().
			Resolve(gomock.Any(), "Erika Musterfrau").
			Return(model.Customer{}, errs.ErrNotFound)

		w := doJSON(router, http.MethodPost, "/api/v1/reservations",
			`{"session_id":"s1","customer_input":"Erika Musterfrau"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_Pickup(t *testing.T) {
	t.Parallel()

	t.Run("verify ok", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)

		verified := reservation.Verified{Deposit: 35}
		verified.Reservation.ID = "r1"
		verified.Reservation.CustomerName = "Ruby Morgan Voigt"
		m.reservation.EXPECT().VerifyCode(gomock.Any(), "123456").Return(verified, nil)

		w := doJSON(router, http.MethodPost, "/api/v1/pickup/verify", `{"code":"123456"}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"deposit":35`)
	})

	t.Run("verify unknown code", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)
		m.reservation.EXPECT().
			VerifyCode(gomock.Any(), "000000").
			Return(reservation.Verified{}, errs.ErrInvalidCode)

		w := doJSON(router, http.MethodPost, "/api/v1/pickup/verify", `{"code":"000000"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, w.Body.String(), "no open reservation")
	})

	t.Run("confirm", func(t *testing.T) {
		t.Parallel()
		m, router := newRouter(t)
		m.reservation.EXPECT().Confirm(gomock.Any(), "r1").Return(nil)

		w := doJSON(router, http.MethodPost, "/api/v1/pickup/r1/confirm", "")
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	_, router := newRouter(t)
	w := doJSON(router, http.MethodGet, "/manage/health", "")
	require.Equal(t, http.StatusOK, w.Code)
}
