package app

import (
	"github.com/vk/actionhub/internal/catalog"
	"github.com/vk/actionhub/modules/echo"
	"github.com/vk/actionhub/modules/envread"
	"github.com/vk/actionhub/modules/slowadd"
)

// coreModules is the definitive list of all modules that are compiled
// into the actionhub binary.
var coreModules = []catalog.Module{
	&echo.Module{},
	&envread.Module{},
	&slowadd.Module{},
}
