package postgres

import "go.uber.org/fx"

// Module opens the database and provides the GORM repositories.
var Module = fx.Module("postgres",
	fx.Provide(
		New,
		NewTransactionManager,
		NewOrderRepository,
		NewOrderAuditRepository,
		NewInventoryRepository,
		NewWarehouseRepository,
		NewProductRepository,
		NewProfileRepository,
		NewGenealogyRepository,
		NewWalletRepository,
	),
)
