package components

import (
	"study-room-booking/internal/handler"
	"study-room-booking/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewRoomHandler,
	),
	fx.Invoke(handler.NewRouter),
)
