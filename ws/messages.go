package ws

import (
	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/pkg/i18n"
)

func errorMessage(loc *i18n.Localizer, err error) string {
	return handlers.MessageFor(loc, err, handlers.Messages{Failed: "coach.failed", Network: "coach.network"})
}
