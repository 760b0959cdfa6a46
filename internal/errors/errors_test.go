package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("bad threshold"),
			want: "[VALIDATION] bad threshold",
		},
		{
			name: "with cause",
			err:  NewStorageError("open csv", fmt.Errorf("permission denied")),
			want: "[STORAGE] open csv: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetworkError("download dataset", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsSourceUnavailable(t *testing.T) {
	fatal := NewSourceUnavailableError("every provider failed", nil)
	wrapped := fmt.Errorf("run aborted: %w", fatal)

	assert.True(t, IsSourceUnavailable(fatal))
	assert.True(t, IsSourceUnavailable(wrapped))
	assert.False(t, IsSourceUnavailable(NewMissingColumnError("Season")))
	assert.False(t, IsSourceUnavailable(fmt.Errorf("plain error")))
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsMissingColumn(NewMissingColumnError("Crop")))
	assert.True(t, IsInsufficientData(NewInsufficientDataError("state=Assam")))
	assert.False(t, IsMissingColumn(NewInsufficientDataError("x")))
}

func TestMissingColumnError_Context(t *testing.T) {
	err := NewMissingColumnError("Season")
	require.NotNil(t, err.Context)
	assert.Equal(t, "Season", err.Context["column"])
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "source unavailable maps to 503",
			err:        NewSourceUnavailableError("no providers", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SOURCE_UNAVAILABLE",
		},
		{
			name:       "validation maps to 400",
			err:        NewValidationError("bad request"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "not found maps to 404",
			err:        NewNotFoundError("run abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "plain error maps to 500",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
