package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/billing"
	"github.com/wordhaven/creditledger/internal/clock"
	"github.com/wordhaven/creditledger/internal/config"
	"github.com/wordhaven/creditledger/internal/identity"
	"github.com/wordhaven/creditledger/internal/ledger"
	"github.com/wordhaven/creditledger/internal/logger"
	"github.com/wordhaven/creditledger/internal/migration"
	"github.com/wordhaven/creditledger/internal/observability"
	"github.com/wordhaven/creditledger/internal/payment"
	"github.com/wordhaven/creditledger/internal/referral"
	"github.com/wordhaven/creditledger/internal/server"
	"github.com/wordhaven/creditledger/internal/textprovider"
	"github.com/wordhaven/creditledger/pkg/db"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		db.Module,
		migration.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		ledger.Module,
		identity.Module,
		textprovider.Module,
		billing.Module,
		referral.Module,
		payment.Module,
		server.Module,
	).Run()
}
