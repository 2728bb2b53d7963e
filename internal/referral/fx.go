package referral

import (
	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/referral/repository"
	"github.com/wordhaven/creditledger/internal/referral/service"
)

var Module = fx.Module("referral",
	fx.Provide(
		repository.New,
		service.New,
	),
)
