package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	billingdomain "github.com/wordhaven/creditledger/internal/billing/domain"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	paymentdomain "github.com/wordhaven/creditledger/internal/payment/domain"
	referraldomain "github.com/wordhaven/creditledger/internal/referral/domain"
	"github.com/wordhaven/creditledger/internal/textprovider"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledgerdomain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{billingdomain.ErrTextTooShort, http.StatusBadRequest},
		{billingdomain.ErrInvalidMode, http.StatusBadRequest},
		{paymentdomain.ErrUnknownProvider, http.StatusBadRequest},
		{identitydomain.ErrBadCredentials, http.StatusUnauthorized},
		{identitydomain.ErrEmailTaken, http.StatusConflict},
		{referraldomain.ErrAlreadyReferred, http.StatusConflict},
		{referraldomain.ErrSelfReferral, http.StatusConflict},
		{paymentdomain.ErrUnknownIntent, http.StatusConflict},
		{paymentdomain.ErrAlreadyProcessed, http.StatusConflict},
		{textprovider.ErrProvider, http.StatusBadGateway},
		{paymentdomain.ErrProvider, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, status, "err=%v", tt.err)
	}

	// Wrapped sentinels map the same as bare ones.
	status, code := statusFor(fmt.Errorf("confirm: %w", paymentdomain.ErrUnknownIntent))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, paymentdomain.ErrUnknownIntent.Error(), code)
}
