package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/wordhaven/creditledger/internal/billing/domain"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	paymentdomain "github.com/wordhaven/creditledger/internal/payment/domain"
	referraldomain "github.com/wordhaven/creditledger/internal/referral/domain"
	"github.com/wordhaven/creditledger/internal/textprovider"
)

// statusFor maps domain sentinels onto HTTP statuses. Anything unmapped is a
// 500; handlers never branch on error values themselves.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledgerdomain.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient_balance"

	case errors.Is(err, billingdomain.ErrInvalidInput),
		errors.Is(err, billingdomain.ErrTextTooShort),
		errors.Is(err, billingdomain.ErrInvalidMode),
		errors.Is(err, billingdomain.ErrUnknownUser),
		errors.Is(err, identitydomain.ErrInvalidInput),
		errors.Is(err, identitydomain.ErrInvalidField),
		errors.Is(err, identitydomain.ErrUnknownUser),
		errors.Is(err, ledgerdomain.ErrUnknownUser),
		errors.Is(err, ledgerdomain.ErrInvalidKind),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, referraldomain.ErrInvalidInput),
		errors.Is(err, referraldomain.ErrUnknownUser),
		errors.Is(err, referraldomain.ErrUnknownCode),
		errors.Is(err, referraldomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidInput),
		errors.Is(err, paymentdomain.ErrUnknownUser),
		errors.Is(err, paymentdomain.ErrUnknownProvider):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, identitydomain.ErrBadCredentials):
		return http.StatusUnauthorized, "bad_credentials"

	case errors.Is(err, identitydomain.ErrEmailTaken),
		errors.Is(err, referraldomain.ErrAlreadyReferred),
		errors.Is(err, referraldomain.ErrSelfReferral),
		errors.Is(err, paymentdomain.ErrUnknownIntent),
		errors.Is(err, paymentdomain.ErrAlreadyProcessed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, textprovider.ErrProvider),
		errors.Is(err, paymentdomain.ErrProvider):
		return http.StatusBadGateway, "provider_unavailable"
	}

	return http.StatusInternalServerError, "internal_error"
}
