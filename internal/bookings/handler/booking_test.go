package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomly/pkg/logger"
	"roomly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	createFunc     func(ctx context.Context, booking *model.Booking) error
	listByUserFunc func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	cancelFunc     func(ctx context.Context, callerID string, id string) error
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingService) GetDetails(ctx context.Context, id string) (*model.BookingDetails, error) {
	return &model.BookingDetails{ID: id}, nil
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Update(ctx context.Context, callerID string, id string, updates *model.BookingUpdate) error {
	return nil
}

func (m *mockBookingService) Cancel(ctx context.Context, callerID string, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, callerID, id)
	}
	return nil
}

func newTestHandler(service *mockBookingService) *BookingHandler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewBookingHandler(service, log)
}

func TestCreate_MissingCallerIdentity(t *testing.T) {
	called := false
	handler := newTestHandler(&mockBookingService{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			called = true
			return nil
		},
	})

	body := `{"room_id":"665f1f77bcf86cd799439001","start_at":"2026-04-01T10:00:00Z","end_at":"2026-04-01T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Error("service must not be called without caller identity")
	}
}

func TestCreate_CallerOwnsBooking(t *testing.T) {
	var created *model.Booking
	handler := newTestHandler(&mockBookingService{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			booking.ID = "665f1f77bcf86cd799439011"
			return nil
		},
	})

	// user_id in the body must be overridden by the gateway identity
	body := `{"user_id":"665f1f77bcf86cd799439099","room_id":"665f1f77bcf86cd799439001","start_at":"2026-04-01T10:00:00Z","end_at":"2026-04-01T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "665f1f77bcf86cd799439003")
	rec := httptest.NewRecorder()

	handler.Create(rec, req, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected service to receive the booking")
	}
	if created.UserID != "665f1f77bcf86cd799439003" {
		t.Errorf("expected owner from X-User-ID header, got %q", created.UserID)
	}
	if !created.StartAt.Equal(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start time: %v", created.StartAt)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	handler := newTestHandler(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	req.Header.Set("X-User-ID", "665f1f77bcf86cd799439003")
	rec := httptest.NewRecorder()

	handler.Create(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestList_RequiresExactlyOneFilter(t *testing.T) {
	handler := newTestHandler(&mockBookingService{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"no filter", "", http.StatusBadRequest},
		{"both filters", "?user_id=a&room_id=b", http.StatusBadRequest},
		{"user filter", "?user_id=665f1f77bcf86cd799439003", http.StatusOK},
		{"room filter", "?room_id=665f1f77bcf86cd799439001", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.List(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCancel_PassesCallerID(t *testing.T) {
	var gotCaller, gotID string
	handler := newTestHandler(&mockBookingService{
		cancelFunc: func(ctx context.Context, callerID string, id string) error {
			gotCaller = callerID
			gotID = id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/665f1f77bcf86cd799439011", nil)
	req.Header.Set("X-User-ID", "665f1f77bcf86cd799439003")
	rec := httptest.NewRecorder()

	handler.Cancel(rec, req, httprouter.Params{{Key: "id", Value: "665f1f77bcf86cd799439011"}})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if gotCaller != "665f1f77bcf86cd799439003" {
		t.Errorf("expected caller id from header, got %q", gotCaller)
	}
	if gotID != "665f1f77bcf86cd799439011" {
		t.Errorf("expected booking id from path, got %q", gotID)
	}
}
