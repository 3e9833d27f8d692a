package rootnet

import (
	"math"

	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
)

// UserAddNetwork creates a new subnetwork on behalf of the coldkey, locking
// the current burn cost from its balance. While the network count is below
// the cap the lowest free netuid starting from 1 is assigned; at the cap an
// existing subnetwork is pruned and its netuid recycled. A rejected
// request leaves no trace.
func (m *Manager) UserAddNetwork(coldkey *accountid.AccountID) error {
	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	currentBlock, err := dbaccess.BlockHeight(dbTx)
	if err != nil {
		return err
	}

	// Step 1: Enforce the network-creation rate limit.
	lastRegistered, err := dbaccess.FetchNetworkLastRegistered(dbTx)
	if err != nil {
		return err
	}
	if currentBlock-lastRegistered < NetworkRateLimit {
		return ErrTxRateLimitExceeded
	}

	// Step 2: Compute the lock amount and check the caller can afford it.
	lastBurnBlock, err := dbaccess.FetchLastBurnBlock(dbTx)
	if err != nil {
		return err
	}
	lastBurnAmount, err := dbaccess.FetchLastBurnAmount(dbTx)
	if err != nil {
		return err
	}
	lockAmount := m.burnCost(lastBurnAmount, currentBlock-lastBurnBlock)
	if lockAmount > math.MaxInt64 {
		return ErrCouldNotConvertToBalance
	}
	if !m.balanceLedger.CanWithdraw(coldkey, lockAmount) {
		return ErrNotEnoughBalanceToStake
	}

	// Step 3: Pick the netuid. Below the cap, the lowest id with no
	// subnetwork bound to it; at the cap, prune a subnetwork and recycle
	// its id.
	totalNetworks, err := dbaccess.TotalNetworks(dbTx)
	if err != nil {
		return err
	}
	subnetLimit, err := dbaccess.SubnetLimit(dbTx)
	if err != nil {
		return err
	}
	var netuid uint16
	if totalNetworks < subnetLimit {
		netuid, err = lowestFreeNetuid(dbTx)
		if err != nil {
			return err
		}
	} else {
		netuid, err = m.pruneSelector.SubnetToPrune(dbTx)
		if err != nil {
			return err
		}
		err = removeNetwork(dbTx, netuid)
		if err != nil {
			return err
		}
		totalNetworks--
		log.Infof("NetworkRemoved(netuid: %d)", netuid)
	}

	// Step 4: Record the lock and initialize the subnetwork and the
	// bookkeeping around it. The writes are only staged at this point.
	err = dbaccess.StoreLockedBalance(dbTx, netuid, lockAmount)
	if err != nil {
		return err
	}
	err = dbaccess.StoreSubnet(dbTx, netuid, defaultSubnetParams())
	if err != nil {
		return err
	}
	err = dbaccess.StoreSubnetworkN(dbTx, netuid, 0)
	if err != nil {
		return err
	}
	err = dbaccess.StoreTotalNetworks(dbTx, totalNetworks+1)
	if err != nil {
		return err
	}
	err = dbaccess.StoreNetworkLastRegistered(dbTx, currentBlock)
	if err != nil {
		return err
	}
	err = dbaccess.StoreNetworkRegisteredAt(dbTx, netuid, currentBlock)
	if err != nil {
		return err
	}
	err = dbaccess.StoreSubnetOwner(dbTx, netuid, coldkey)
	if err != nil {
		return err
	}
	err = dbaccess.StoreLastBurnBlock(dbTx, currentBlock)
	if err != nil {
		return err
	}
	err = dbaccess.StoreLastBurnAmount(dbTx, lockAmount)
	if err != nil {
		return err
	}

	// Step 5: Take the lock. The withdrawal is irreversible, so it is
	// deferred until the only step left is committing the staged batch.
	err = m.balanceLedger.Withdraw(coldkey, lockAmount)
	if err != nil {
		log.Warnf("Network lock withdrawal failed: %s", err)
		return ErrBalanceWithdrawalError
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Infof("NetworkAdded(netuid: %d, lock: %d, owner: %s)", netuid, lockAmount, coldkey)
	return nil
}

// lowestFreeNetuid scans upward from 1 for the first id with no
// subnetwork bound to it. Id 0 belongs to the root network.
func lowestFreeNetuid(context dbaccess.Context) (uint16, error) {
	for netuid := uint16(1); netuid < math.MaxUint16; netuid++ {
		exists, err := dbaccess.HasSubnet(context, netuid)
		if err != nil {
			return 0, err
		}
		if !exists {
			return netuid, nil
		}
	}
	return 0, ErrNetworkDoesNotExist
}

// removeNetwork erases every piece of state bound to the given netuid. The
// subnetwork's locked balance is dropped with it.
func removeNetwork(context dbaccess.Context, netuid uint16) error {
	err := dbaccess.DeleteNeurons(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteWeightRows(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteSubnet(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteEmission(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteLockedBalance(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteNetworkRegisteredAt(context, netuid)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteSubnetOwner(context, netuid)
	if err != nil {
		return err
	}
	return dbaccess.DeleteRegistrationCounters(context, netuid)
}
