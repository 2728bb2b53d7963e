package payment

import (
	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/payment/adapters"
	"github.com/wordhaven/creditledger/internal/payment/adapters/airwallex"
	"github.com/wordhaven/creditledger/internal/payment/adapters/stripe"
	"github.com/wordhaven/creditledger/internal/payment/domain"
	"github.com/wordhaven/creditledger/internal/payment/repository"
	"github.com/wordhaven/creditledger/internal/payment/service"
)

var Module = fx.Module("payment",
	fx.Provide(
		repository.New,
		fx.Annotate(
			stripe.New,
			fx.As(new(domain.ProviderAdapter)),
			fx.ResultTags(`group:"payment_adapters"`),
		),
		fx.Annotate(
			airwallex.New,
			fx.As(new(domain.ProviderAdapter)),
			fx.ResultTags(`group:"payment_adapters"`),
		),
		adapters.NewRegistry,
		service.New,
	),
)
