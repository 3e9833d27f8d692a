package rootnet

import (
	"math"
	"math/big"

	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/infrastructure/logger"
	"github.com/rootnet/rootd/util/fixedpoint"
)

// blocksUntilNextEpoch returns how many blocks remain until the given
// network's next epoch at the given height. The network's netuid offsets
// its phase so that networks sharing a tempo do not all fire on the same
// block. A zero tempo means the network never runs an epoch.
func blocksUntilNextEpoch(netuid uint16, tempo uint16, block uint64) uint64 {
	if tempo == 0 {
		return math.MaxUint64
	}
	return uint64(tempo) - (block+uint64(netuid)+1)%(uint64(tempo)+1)
}

// RootEpoch runs the root emission computation for the given block height.
// When the height falls on the root network's tempo boundary it aggregates
// the root validators' weight rows into stake-weighted subnetwork ranks,
// normalizes the ranks into emission fractions and persists each
// subnetwork's per-block emission value. On any other height it is a
// no-op.
func (m *Manager) RootEpoch(block uint64) error {
	if blocksUntilNextEpoch(RootNetuid, RootTempo, block) > 0 {
		return nil
	}
	onEnd := logger.LogAndMeasureExecutionTime(log, "RootEpoch")
	defer onEnd()

	dbTx, err := m.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	// Step 1: Collect the dimensions. n root validators weigh k networks,
	// the root network's own always-zero column included.
	n, err := dbaccess.SubnetworkN(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	k, err := dbaccess.TotalNetworks(dbTx)
	if err != nil {
		return err
	}
	log.Tracef("Running root epoch at block %d with %d validators over %d networks", block, n, k)
	if n == 0 || k == 0 {
		return nil
	}

	// Step 2: Build the normalized stake vector over the root validators,
	// ordered by uid.
	neurons, err := dbaccess.FetchNeurons(dbTx, RootNetuid)
	if err != nil {
		return err
	}
	stake := make([]*big.Int, n)
	for i := range stake {
		stake[i] = new(big.Int)
	}
	for _, neuron := range neurons {
		if neuron.UID >= n {
			continue
		}
		stake[neuron.UID] = fixedpoint.U64ToFixed64(m.stakeLedger.TotalStakeFor(&neuron.Hotkey))
	}
	fixedpoint.InplaceNormalize64(stake)
	narrowStake := fixedpoint.NarrowVec(stake)

	// Step 3: Assemble the dense n-by-k weight matrix from the stored
	// weight rows.
	weights, err := rootWeightMatrix(dbTx, n, k)
	if err != nil {
		return err
	}

	// Step 4: Ranks are the stake-weighted column sums of the weight
	// matrix. Normalizing them yields each network's emission fraction.
	ranks := fixedpoint.MatVecMul(weights, narrowStake)
	fractions := fixedpoint.WidenVec(ranks)
	fixedpoint.InplaceNormalize64(fractions)

	// Step 5: Scale the fractions by the per-block emission budget and
	// persist them.
	emission := fixedpoint.ScaleToU64(fractions, m.blockEmission)
	for netuid := uint16(0); netuid < k; netuid++ {
		value := uint64(0)
		if int(netuid) < len(emission) {
			value = emission[netuid]
		}
		err = dbaccess.StoreEmission(dbTx, netuid, value)
		if err != nil {
			return err
		}
		log.Tracef("Root epoch emission (netuid: %d, emission: %d)", netuid, value)
	}

	return dbTx.Commit()
}

// rootWeightMatrix loads the root validators' weight rows into a dense
// n-by-k matrix of the stored max-upscaled magnitudes. Rows without a
// stored submission stay zero, as do entries whose target is out of
// range.
func rootWeightMatrix(context dbaccess.Context, n uint16, k uint16) ([][]fixedpoint.Fixed32, error) {
	rows, err := dbaccess.FetchWeightRows(context, RootNetuid)
	if err != nil {
		return nil, err
	}

	weights := make([][]fixedpoint.Fixed32, n)
	for uid := range weights {
		weights[uid] = make([]fixedpoint.Fixed32, k)
	}
	for uid, row := range rows {
		if uid >= n {
			continue
		}
		for _, pair := range row {
			if pair.Target >= k {
				continue
			}
			weights[uid][pair.Target] = fixedpoint.FromU16(pair.Value)
		}
	}
	return weights, nil
}

// NumSubnets returns the current number of networks, the root network
// included.
func (m *Manager) NumSubnets() (uint16, error) {
	return dbaccess.TotalNetworks(m.databaseContext)
}

// MaxAllowedSubnets returns the hard cap on the number of networks.
func (m *Manager) MaxAllowedSubnets() (uint16, error) {
	return dbaccess.SubnetLimit(m.databaseContext)
}

// Emission returns the per-block emission value last computed for the
// given network.
func (m *Manager) Emission(netuid uint16) (uint64, error) {
	return dbaccess.FetchEmission(m.databaseContext, netuid)
}

// RootWeights returns the root weight matrix as it would enter the next
// epoch computation.
func (m *Manager) RootWeights() ([][]fixedpoint.Fixed32, error) {
	n, err := dbaccess.SubnetworkN(m.databaseContext, RootNetuid)
	if err != nil {
		return nil, err
	}
	k, err := dbaccess.TotalNetworks(m.databaseContext)
	if err != nil {
		return nil, err
	}
	return rootWeightMatrix(m.databaseContext, n, k)
}

// ContainsInvalidRootUids reports whether any of the given uids does not
// identify an existing network.
func (m *Manager) ContainsInvalidRootUids(uids []uint16) (bool, error) {
	totalNetworks, err := dbaccess.TotalNetworks(m.databaseContext)
	if err != nil {
		return false, err
	}
	for _, uid := range uids {
		if uid > totalNetworks {
			return true, nil
		}
	}
	return false, nil
}
