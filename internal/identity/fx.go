package identity

import (
	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/identity/repository"
	"github.com/wordhaven/creditledger/internal/identity/service"
)

var Module = fx.Module("identity",
	fx.Provide(
		repository.New,
		service.New,
	),
)
