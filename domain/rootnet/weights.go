package rootnet

import (
	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
	"github.com/rootnet/rootd/util/fixedpoint"
)

// SetRootWeights records the calling hotkey's preference over the
// subnetworks. uids names the target netuids and values the relative
// weights, which are rescaled so that the largest becomes the maximum
// representable value. The submission replaces the slot's previous row
// entirely. A rejected submission leaves no trace.
func (m *Manager) SetRootWeights(hotkey *accountid.AccountID, uids []uint16, values []uint16) error {
	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	// Step 1: The uid and value vectors must pair up.
	if len(uids) != len(values) {
		return ErrWeightVecNotEqualSize
	}

	// Step 2: The submission cannot name more targets than there are
	// networks.
	totalNetworks, err := dbaccess.TotalNetworks(dbTx)
	if err != nil {
		return err
	}
	if len(uids) > int(totalNetworks) {
		return ErrTooManyUids
	}

	// Step 3: The hotkey must hold a root slot.
	uid, found, err := dbaccess.FetchUIDForHotkey(dbTx, RootNetuid, hotkey)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotRegistered
	}

	// Step 4: Enforce the root network's submission rate limit.
	params, found, err := dbaccess.FetchSubnet(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	if !found {
		return ErrNetworkDoesNotExist
	}
	if params.WeightsSetRateLimit > 0 {
		currentBlock, err := dbaccess.BlockHeight(dbTx)
		if err != nil {
			return err
		}
		lastUpdate, err := dbaccess.FetchLastUpdate(dbTx, RootNetuid, uid)
		if err != nil {
			return err
		}
		if currentBlock-lastUpdate < params.WeightsSetRateLimit {
			return ErrSettingWeightsTooFast
		}
	}

	// Step 5: Reject targets named more than once. The whole vector is
	// scanned for duplicates before any target is range checked.
	seen := make(map[uint16]struct{}, len(uids))
	for _, target := range uids {
		if _, ok := seen[target]; ok {
			return ErrDuplicateUids
		}
		seen[target] = struct{}{}
	}

	// Step 6: Reject the root network itself and targets beyond the
	// network count.
	for _, target := range uids {
		if target == RootNetuid || target > totalNetworks {
			return ErrInvalidUid
		}
	}

	// Step 7: Rescale so the largest value saturates the range, then
	// store the row.
	upscaled := fixedpoint.MaxUpscaleU16(values)
	row := make([]dbaccess.WeightPair, len(uids))
	for i := range uids {
		row[i] = dbaccess.WeightPair{Target: uids[i], Value: upscaled[i]}
	}
	err = dbaccess.StoreWeightRow(dbTx, RootNetuid, uid, row)
	if err != nil {
		return err
	}
	currentBlock, err := dbaccess.BlockHeight(dbTx)
	if err != nil {
		return err
	}
	err = dbaccess.StoreLastUpdate(dbTx, RootNetuid, uid, currentBlock)
	if err != nil {
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Infof("RootWeightsSet(netuid: %d, uid: %d)", RootNetuid, uid)
	return nil
}
