package rootnet

import (
	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
)

// RootRegister registers the hotkey as a root validator on behalf of the
// coldkey. While the root network has free slots the hotkey is appended at
// the next uid. Once it is full, the hotkey replaces the incumbent with
// the lowest stake, provided the newcomer's stake strictly exceeds it. A
// rejected registration leaves no trace.
func (m *Manager) RootRegister(coldkey *accountid.AccountID, hotkey *accountid.AccountID) error {
	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	// Step 1: The root network must exist.
	params, found, err := dbaccess.FetchSubnet(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	if !found {
		return ErrNetworkDoesNotExist
	}

	// Step 2: Enforce the registration allowances. The per-interval
	// allowance is three times the registration target.
	registrationsThisBlock, err := dbaccess.RegistrationsThisBlock(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	if registrationsThisBlock >= params.MaxRegistrationsPerBlock {
		return ErrTooManyRegistrationsThisBlock
	}
	registrationsThisInterval, err := dbaccess.RegistrationsThisInterval(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	if registrationsThisInterval >= params.TargetRegistrationsPerInterval*3 {
		return ErrTooManyRegistrationsThisInterval
	}

	// Step 3: A hotkey holds at most one root slot.
	_, found, err = dbaccess.FetchUIDForHotkey(dbTx, RootNetuid, hotkey)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyRegistered
	}

	hasAccount, err := dbaccess.HasAccount(dbTx, hotkey)
	if err != nil {
		return err
	}
	if !hasAccount {
		err = dbaccess.StoreAccount(dbTx, hotkey, coldkey)
		if err != nil {
			return err
		}
	}

	if params.MaxAllowedUids == 0 {
		return ErrNetworkDoesNotExist
	}

	currentBlock, err := dbaccess.BlockHeight(dbTx)
	if err != nil {
		return err
	}
	subnetworkN, err := dbaccess.SubnetworkN(dbTx, RootNetuid)
	if err != nil {
		return err
	}

	var uid uint16
	if subnetworkN < params.MaxAllowedUids {
		// Step 4a: Append at the next free uid.
		uid = subnetworkN
		err = dbaccess.StoreSubnetworkN(dbTx, RootNetuid, subnetworkN+1)
		if err != nil {
			return err
		}
	} else {
		// Step 4b: The network is full. Find the incumbent with the
		// lowest stake, lowest uid first, and require the newcomer to
		// strictly outbid it.
		uid, err = m.replaceLowestStaked(dbTx, hotkey)
		if err != nil {
			return err
		}
	}

	// Step 5: Bind the slot.
	err = dbaccess.StoreNeuron(dbTx, RootNetuid, uid, hotkey)
	if err != nil {
		return err
	}
	err = dbaccess.StoreUIDForHotkey(dbTx, RootNetuid, hotkey, uid)
	if err != nil {
		return err
	}
	err = dbaccess.StoreBlockAtRegistration(dbTx, RootNetuid, uid, currentBlock)
	if err != nil {
		return err
	}
	err = dbaccess.StoreLastUpdate(dbTx, RootNetuid, uid, currentBlock)
	if err != nil {
		return err
	}

	// Step 6: Account for the registration.
	err = dbaccess.StoreRegistrationsThisBlock(dbTx, RootNetuid, registrationsThisBlock+1)
	if err != nil {
		return err
	}
	err = dbaccess.StoreRegistrationsThisInterval(dbTx, RootNetuid, registrationsThisInterval+1)
	if err != nil {
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Infof("RootRegistered(netuid: %d, uid: %d, hotkey: %s)", RootNetuid, uid, hotkey)
	return nil
}

// replaceLowestStaked evicts the lowest-staked root validator in favor of
// the given hotkey and returns the freed uid. Ties between incumbents
// resolve to the lowest uid. The newcomer's stake must strictly exceed the
// evicted incumbent's.
func (m *Manager) replaceLowestStaked(dbTx *dbaccess.TxContext, hotkey *accountid.AccountID) (uint16, error) {
	neurons, err := dbaccess.FetchNeurons(dbTx, RootNetuid)
	if err != nil {
		return 0, err
	}

	lowestIndex := -1
	var lowestStake uint64
	for i := range neurons {
		stake := m.stakeLedger.TotalStakeFor(&neurons[i].Hotkey)
		if lowestIndex < 0 || stake < lowestStake {
			lowestIndex = i
			lowestStake = stake
		}
	}
	if lowestIndex < 0 {
		return 0, ErrNetworkDoesNotExist
	}
	lowest := &neurons[lowestIndex]
	if m.stakeLedger.TotalStakeFor(hotkey) <= lowestStake {
		return 0, ErrStakeTooLowForRoot
	}

	err = dbaccess.DeleteUIDForHotkey(dbTx, RootNetuid, &lowest.Hotkey)
	if err != nil {
		return 0, err
	}
	err = dbaccess.DeleteWeightRow(dbTx, RootNetuid, lowest.UID)
	if err != nil {
		return 0, err
	}
	log.Debugf("Replacing root validator (uid: %d, stake: %d, hotkey: %s)",
		lowest.UID, lowestStake, &lowest.Hotkey)
	return lowest.UID, nil
}
