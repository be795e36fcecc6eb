package components

import (
	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/clock"
	"study-room-booking/internal/pkg/config"
	"study-room-booking/internal/usecase/commands"
	"study-room-booking/internal/usecase/queries"
	"study-room-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) (reservation.Rules, error) {
		return cfg.Booking.Rules()
	},
	func(cfg config.Config) shared.StorePolicy {
		return shared.StorePolicy{Timeout: cfg.Store.Timeout}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)
