package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rootnet/rootd/config"
	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/domain/rootnet"
	"github.com/rootnet/rootd/infrastructure/logger"
	"github.com/rootnet/rootd/signal"
	"github.com/rootnet/rootd/version"
)

// rootdMain is the real main function for rootd. It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is
// called.
func rootdMain() error {
	interrupt := signal.InterruptListener()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	defer logger.Close()
	logger.SetLogLevelsString(cfg.DebugLevel)

	log.Infof("Version %s", version.Version())

	databaseContext, err := dbaccess.New(cfg.DataDir)
	if err != nil {
		log.Errorf("Could not open the database: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Error closing the database: %+v", err)
		}
	}()

	manager := rootnet.New(&rootnet.Config{
		DatabaseContext: databaseContext,
		StakeLedger:     rootnet.NewMapStakeLedger(),
		BalanceLedger:   rootnet.NewMapBalanceLedger(),
		BlockEmission:   cfg.BlockEmission,
	})
	err = manager.EnsureRootNetwork()
	if err != nil {
		log.Errorf("Could not initialize the root network: %+v", err)
		return err
	}
	height, err := manager.CurrentBlock()
	if err != nil {
		log.Errorf("Could not read the block height: %+v", err)
		return err
	}
	log.Infof("Resuming at block height %d", height)

	ticker := time.NewTicker(cfg.BlockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			height, err := manager.AdvanceBlock()
			if err != nil {
				log.Errorf("Error advancing to the next block: %+v", err)
				return err
			}
			log.Tracef("Advanced to block %d", height)
		case <-interrupt:
			return nil
		}
	}
}
