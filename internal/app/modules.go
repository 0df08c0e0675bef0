package app

import (
	"github.com/vk/maestro/internal/registry"
	"github.com/vk/maestro/modules/command"
	"github.com/vk/maestro/modules/http_request"
	"github.com/vk/maestro/modules/print"
	"github.com/vk/maestro/modules/probes"
	"github.com/vk/maestro/modules/sleep"
	"github.com/vk/maestro/modules/socketio"
)

// coreModules is the default set registered when the caller supplies none.
var coreModules = []registry.Module{
	&command.Module{},
	&http_request.Module{},
	&print.Module{},
	&probes.Module{},
	&sleep.Module{},
	&socketio.Module{},
}
