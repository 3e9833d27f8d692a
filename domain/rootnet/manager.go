package rootnet

import (
	"math"

	"github.com/pkg/errors"

	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
)

// StakeLedger exposes the total stake bound to a hotkey. Stake accounting
// itself lives outside this core.
type StakeLedger interface {
	TotalStakeFor(hotkey *accountid.AccountID) uint64
}

// BalanceLedger exposes the spendable-balance operations needed to lock
// funds for network creation. Balance accounting itself lives outside this
// core.
type BalanceLedger interface {
	// CanWithdraw returns whether amount is spendable from the coldkey's
	// balance.
	CanWithdraw(coldkey *accountid.AccountID, amount uint64) bool

	// Withdraw irreversibly removes amount from the coldkey's balance. It
	// may fail even after CanWithdraw returned true, e.g. because of a
	// reservation conflict.
	Withdraw(coldkey *accountid.AccountID, amount uint64) error
}

// PruneSelector chooses the subnetwork to remove when a network
// registration arrives while the subnetwork cap is reached. The selection
// policy is external to this core.
type PruneSelector interface {
	SubnetToPrune(context dbaccess.Context) (uint16, error)
}

// BurnCostFunc computes the current network-creation lock cost from the
// amount of the previous burn and the number of blocks since it happened.
// Implementations must be deterministic.
type BurnCostFunc func(lastBurnAmount uint64, blocksSinceLastBurn uint64) uint64

// Config holds the collaborators and policy knobs a Manager is built from.
type Config struct {
	DatabaseContext *dbaccess.DatabaseContext
	StakeLedger     StakeLedger
	BalanceLedger   BalanceLedger

	// PruneSelector defaults to OldestSubnetPruner when nil.
	PruneSelector PruneSelector

	// BurnCost defaults to DefaultBurnCost when nil.
	BurnCost BurnCostFunc

	// BlockEmission defaults to DefaultBlockEmission when 0.
	BlockEmission uint64
}

// Manager implements the root network state transitions: the periodic
// emission epoch, weight submission, neuron registration and subnetwork
// registration. All operations are synchronous and atomic: a rejected
// request leaves no observable trace.
//
// Manager assumes it is driven strictly sequentially, one operation at a
// time, by the surrounding block scheduler.
type Manager struct {
	databaseContext *dbaccess.DatabaseContext
	stakeLedger     StakeLedger
	balanceLedger   BalanceLedger
	pruneSelector   PruneSelector
	burnCost        BurnCostFunc
	blockEmission   uint64
}

// New creates a Manager from the given config.
func New(config *Config) *Manager {
	manager := &Manager{
		databaseContext: config.DatabaseContext,
		stakeLedger:     config.StakeLedger,
		balanceLedger:   config.BalanceLedger,
		pruneSelector:   config.PruneSelector,
		burnCost:        config.BurnCost,
		blockEmission:   config.BlockEmission,
	}
	if manager.pruneSelector == nil {
		manager.pruneSelector = OldestSubnetPruner{}
	}
	if manager.burnCost == nil {
		manager.burnCost = DefaultBurnCost
	}
	if manager.blockEmission == 0 {
		manager.blockEmission = DefaultBlockEmission
	}
	return manager
}

// EnsureRootNetwork initializes the root network if the database does not
// contain it yet. It is invoked once on daemon startup.
func (m *Manager) EnsureRootNetwork() error {
	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	exists, err := dbaccess.HasSubnet(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = dbaccess.StoreSubnet(dbTx, RootNetuid, rootSubnetParams())
	if err != nil {
		return err
	}
	err = dbaccess.StoreSubnetworkN(dbTx, RootNetuid, 0)
	if err != nil {
		return err
	}
	totalNetworks, err := dbaccess.TotalNetworks(dbTx)
	if err != nil {
		return err
	}
	err = dbaccess.StoreTotalNetworks(dbTx, totalNetworks+1)
	if err != nil {
		return err
	}
	subnetLimit, err := dbaccess.SubnetLimit(dbTx)
	if err != nil {
		return err
	}
	if subnetLimit == 0 {
		err = dbaccess.StoreSubnetLimit(dbTx, DefaultSubnetLimit)
		if err != nil {
			return err
		}
	}
	err = dbaccess.StoreNetworkRegisteredAt(dbTx, RootNetuid, 0)
	if err != nil {
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Infof("Initialized the root network (netuid: %d, tempo: %d)", RootNetuid, RootTempo)
	return nil
}

// CurrentBlock returns the current block height.
func (m *Manager) CurrentBlock() (uint64, error) {
	return dbaccess.BlockHeight(m.databaseContext)
}

// AdvanceBlock moves the chain one block forward: it bumps the height,
// resets the per-block registration counters, resets per-interval counters
// on their subnetworks' adjustment-interval boundaries, and runs the root
// epoch computation for the new height. It returns the new height.
func (m *Manager) AdvanceBlock() (uint64, error) {
	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return 0, err
	}
	defer dbTx.RollbackUnlessClosed()

	height, err := dbaccess.BlockHeight(dbTx)
	if err != nil {
		return 0, err
	}
	height++
	err = dbaccess.StoreBlockHeight(dbTx, height)
	if err != nil {
		return 0, err
	}

	err = dbaccess.ResetRegistrationsThisBlock(dbTx)
	if err != nil {
		return 0, err
	}

	netuids, err := dbaccess.FetchSubnetNetuids(dbTx)
	if err != nil {
		return 0, err
	}
	for _, netuid := range netuids {
		params, found, err := dbaccess.FetchSubnet(dbTx, netuid)
		if err != nil {
			return 0, err
		}
		if !found || params.AdjustmentInterval == 0 {
			continue
		}
		if height%uint64(params.AdjustmentInterval) == 0 {
			err = dbaccess.ResetRegistrationsThisInterval(dbTx, netuid)
			if err != nil {
				return 0, err
			}
		}
	}

	err = dbTx.Commit()
	if err != nil {
		return 0, err
	}

	return height, m.RootEpoch(height)
}

// DefaultBurnCost doubles the previous network-creation burn and decays it
// linearly back to DefaultNetworkMinLock over BurnCostDecayBlocks. The
// result never drops below DefaultNetworkMinLock, so the cost function is
// monotone in demand: back-to-back registrations get progressively more
// expensive.
func DefaultBurnCost(lastBurnAmount uint64, blocksSinceLastBurn uint64) uint64 {
	var doubled uint64
	if lastBurnAmount > math.MaxUint64/2 {
		doubled = math.MaxUint64
	} else {
		doubled = lastBurnAmount * 2
	}
	if doubled <= DefaultNetworkMinLock || blocksSinceLastBurn >= BurnCostDecayBlocks {
		return DefaultNetworkMinLock
	}

	decayed := doubled - doubled/BurnCostDecayBlocks*blocksSinceLastBurn
	if decayed < DefaultNetworkMinLock {
		return DefaultNetworkMinLock
	}
	return decayed
}

// OldestSubnetPruner is the default PruneSelector. It selects the non-root
// subnetwork with the earliest registration block, ties resolved in favor
// of the lowest netuid.
type OldestSubnetPruner struct{}

// SubnetToPrune implements the PruneSelector interface.
func (OldestSubnetPruner) SubnetToPrune(context dbaccess.Context) (uint16, error) {
	netuids, err := dbaccess.FetchSubnetNetuids(context)
	if err != nil {
		return 0, err
	}

	victim := RootNetuid
	oldest := uint64(math.MaxUint64)
	for _, netuid := range netuids {
		if netuid == RootNetuid {
			continue
		}
		registeredAt, err := dbaccess.FetchNetworkRegisteredAt(context, netuid)
		if err != nil {
			return 0, err
		}
		if registeredAt < oldest {
			oldest = registeredAt
			victim = netuid
		}
	}
	if victim == RootNetuid {
		return 0, errors.New("no subnetwork is available to prune")
	}
	return victim, nil
}
