package ledger

import (
	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/ledger/repository"
	"github.com/wordhaven/creditledger/internal/ledger/service"
)

var Module = fx.Module("ledger",
	fx.Provide(
		repository.New,
		service.New,
	),
)
