package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"perfume-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockWarrantyService is a mock implementation of service.WarrantyService.
type MockWarrantyService struct {
	mock.Mock
}

func (m *MockWarrantyService) CreateForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) DeleteForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockWarrantyService) ExpireOutdated(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) FindExpiringSoon(ctx context.Context, withinDays int) ([]model.Warranty, error) {
	args := m.Called(ctx, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Warranty), args.Error(1)
}

func TestWarrantyHandler_ExpiringSoon(t *testing.T) {
	logger := zerolog.Nop()

	warranties := []model.Warranty{
		{ID: uuid.New(), Code: "WTY-A", Status: model.WarrantyActive},
		{ID: uuid.New(), Code: "WTY-B", Status: model.WarrantyActive},
	}

	tests := []struct {
		name           string
		query          string
		expectedDays   int
		mockReturn     []model.Warranty
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Explicit window",
			query:          "?days=14",
			expectedDays:   14,
			mockReturn:     warranties,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Default window",
			query:          "",
			expectedDays:   defaultExpiryWindowDays,
			mockReturn:     []model.Warranty{},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Non-numeric window",
			query:          "?days=soon",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Non-positive window",
			query:          "?days=0",
			expectedDays:   0,
			mockError:      model.NewValidationError("withinDays", "window must be at least one day"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWarrantyService)
			if tt.expectService {
				mockService.On("FindExpiringSoon", mock.Anything, tt.expectedDays).
					Return(tt.mockReturn, tt.mockError)
			}

			h := NewWarrantyHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodGet, "/api/warranties/expiring"+tt.query, nil)
			w := httptest.NewRecorder()

			h.ExpiringSoon(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Warranties []model.Warranty `json:"warranties"`
					Count      int              `json:"count"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, len(tt.mockReturn), resp.Count)
			}

			mockService.AssertExpectations(t)
		})
	}
}
