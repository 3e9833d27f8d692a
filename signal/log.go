package signal

import (
	"github.com/rootnet/rootd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("ROOT")
