package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labslot/internal/auth"
)

type MockService struct{ mock.Mock }

func (m *MockService) Create(ctx context.Context, actor auth.Actor, req CreateRequest) ([]Reservation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reservation), args.Error(1)
}

func (m *MockService) CreateOnBehalf(ctx context.Context, actor auth.Actor, req CreateOnBehalfRequest) ([]Reservation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reservation), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, actor auth.Actor, reservationID int) (*ReservationWithDetails, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReservationWithDetails), args.Error(1)
}

func (m *MockService) Edit(ctx context.Context, actor auth.Actor, reservationID int, req EditRequest) (*Reservation, error) {
	args := m.Called(ctx, actor, reservationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (int64, error) {
	args := m.Called(ctx, actor, reservationID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) RemoveByStaff(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (*Reservation, error) {
	args := m.Called(ctx, actor, reservationID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *MockService) ListForHolder(ctx context.Context, holderID int) ([]ReservationWithDetails, error) {
	args := m.Called(ctx, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReservationWithDetails), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context, actor auth.Actor) ([]ReservationWithDetails, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReservationWithDetails), args.Error(1)
}

func setActor(actor auth.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", actor.ID)
		c.Set("user_role", actor.Role)
		c.Next()
	}
}

func setupRouter(svc Service, actor auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.Use(setActor(actor))
	router.POST("/reservations", h.Create)
	router.GET("/reservations/:reservationID", h.GetByID)
	router.PATCH("/reservations/:reservationID", h.Edit)
	router.DELETE("/reservations/:reservationID", h.Delete)
	router.GET("/reservations", h.ListMine)
	router.POST("/staff/reservations", h.CreateOnBehalf)
	router.DELETE("/staff/reservations/:reservationID", h.RemoveByStaff)
	router.GET("/staff/reservations", h.ListAll)
	return router
}

func TestCreateHandler(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 1, Role: auth.RoleMember}
	router := setupRouter(svc, actor)

	req := CreateRequest{FacilityID: 1, Date: "2026-03-02", Time: "09:00", Seats: []int{2, 5}}
	svc.On("Create", mock.Anything, actor, req).Return([]Reservation{{ID: 10}, {ID: 11}}, nil)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)

	var created []Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created, 2)
}

func TestCreateHandlerMissingFields(t *testing.T) {
	svc := new(MockService)
	router := setupRouter(svc, auth.Actor{ID: 1, Role: auth.RoleMember})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(`{"facility_id":1}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"seat conflict", ErrSeatConflict, http.StatusConflict},
		{"holder conflict", ErrHolderConflict, http.StatusConflict},
		{"not allowed", ErrNotAllowed, http.StatusForbidden},
		{"facility missing", ErrNotFound, http.StatusNotFound},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	req := CreateRequest{FacilityID: 1, Date: "2026-03-02", Time: "09:00", Seats: []int{1}}
	body, _ := json.Marshal(req)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			router := setupRouter(svc, auth.Actor{ID: 1, Role: auth.RoleMember})
			svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewReader(body)))
			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestGetByIDHandler(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 1, Role: auth.RoleMember}
	router := setupRouter(svc, actor)

	svc.On("Get", mock.Anything, actor, 8).Return(&ReservationWithDetails{
		Reservation:  Reservation{ID: 8, HolderID: 1, SeatNumber: 2},
		FacilityName: "Reading Room",
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations/8", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got ReservationWithDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 8, got.ID)
	assert.Equal(t, "Reading Room", got.FacilityName)
}

func TestGetByIDHandlerNotVisible(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 3, Role: auth.RoleMember}
	router := setupRouter(svc, actor)

	svc.On("Get", mock.Anything, actor, 8).Return(nil, ErrNotAllowed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations/8", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteHandler(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 1, Role: auth.RoleMember}
	router := setupRouter(svc, actor)

	svc.On("Delete", mock.Anything, actor, 8, mock.Anything).Return(int64(3), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reservations/8", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp DeleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Removed)
}

func TestDeleteHandlerBadID(t *testing.T) {
	svc := new(MockService)
	router := setupRouter(svc, auth.Actor{ID: 1, Role: auth.RoleMember})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reservations/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveByStaffHandlerGraceExpired(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 99, Role: auth.RoleStaff}
	router := setupRouter(svc, actor)

	svc.On("RemoveByStaff", mock.Anything, actor, 8, mock.Anything).Return(nil, ErrGracePeriodExpired)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/staff/reservations/8", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "grace period")
}

func TestCreateOnBehalfHandlerUnknownMember(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 99, Role: auth.RoleStaff}
	router := setupRouter(svc, actor)

	svc.On("CreateOnBehalf", mock.Anything, actor, mock.Anything).Return(nil, ErrMemberNotFound)

	body := `{"member_email":"ghost@example.com","facility_id":1,"date":"2026-03-02","time":"09:00","seats":[1]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/staff/reservations", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMineHandler(t *testing.T) {
	svc := new(MockService)
	actor := auth.Actor{ID: 1, Role: auth.RoleMember}
	router := setupRouter(svc, actor)

	svc.On("ListForHolder", mock.Anything, 1).Return([]ReservationWithDetails{
		{Reservation: Reservation{ID: 1, HolderID: 1}, FacilityName: "Reading Room", HolderName: "Jo"},
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reading Room")
}
