package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("contribute: %w", Wrap(CodeInsufficientFunds, "debit vault", errors.New("balance 3 < 5")))

	require.ErrorIs(t, wrapped, ErrInsufficientFunds)
	require.NotErrorIs(t, wrapped, ErrOverflow)
	require.Equal(t, CodeInsufficientFunds, CodeOf(wrapped))
	require.Contains(t, wrapped.Error(), "balance 3 < 5")
}

func TestCode_KindAndStatus(t *testing.T) {
	cases := []struct {
		code   Code
		kind   Kind
		status int
	}{
		{CodeInvalidGoalAmount, KindValidation, http.StatusBadRequest},
		{CodeProjectEnded, KindState, http.StatusUnprocessableEntity},
		{CodeUnauthorized, KindState, http.StatusForbidden},
		{CodeOverflow, KindArithmetic, http.StatusUnprocessableEntity},
		{CodeInsufficientFunds, KindExternal, http.StatusPaymentRequired},
		{CodeStorageUnavailable, KindExternal, http.StatusServiceUnavailable},
		{CodeProjectNotFound, KindNotFound, http.StatusNotFound},
		{CodeDuplicateRecord, KindConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			require.Equal(t, tc.kind, tc.code.Kind())
			require.Equal(t, tc.status, tc.code.HTTPStatus())
			require.Equal(t, tc.kind == KindExternal, tc.code.Retryable())
		})
	}
}

func TestField(t *testing.T) {
	require.Equal(t, "description", Field(ErrDescriptionTooLong))
	require.Equal(t, "", Field(ErrGoalReached))
	require.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}
