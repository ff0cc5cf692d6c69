package memory

import "go.uber.org/fx"

// Module provides every repository on a single in-process store.
var Module = fx.Module("memory",
	fx.Provide(
		NewStore,
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
