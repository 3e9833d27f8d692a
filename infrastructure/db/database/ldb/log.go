package ldb

import (
	"github.com/rootnet/rootd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("RTLD")
