package rootnet

import (
	"github.com/rootnet/rootd/dbaccess"
)

const (
	// RootNetuid is the unique identifier of the root network. It is fixed
	// at 0 and is never a valid target of weight-setting or registration.
	RootNetuid uint16 = 0

	// RootTempo is the number of blocks between root epoch computations.
	RootTempo uint16 = 100

	// DefaultSubnetLimit is the hard cap on the number of subnetworks,
	// the root network included.
	DefaultSubnetLimit uint16 = 32

	// DefaultBlockEmission is the total per-block emission budget divided
	// among the subnetworks, in base token units.
	DefaultBlockEmission uint64 = 1_000_000_000

	// DefaultNetworkMinLock is the floor of the network-creation lock cost.
	DefaultNetworkMinLock uint64 = 100_000_000_000

	// NetworkRateLimit is the minimum number of blocks between two
	// network-creation burns.
	NetworkRateLimit uint64 = 1

	// BurnCostDecayBlocks is the number of blocks over which the doubled
	// network lock cost decays back to DefaultNetworkMinLock.
	BurnCostDecayBlocks uint64 = 14_400
)

// Root network genesis parameters.
const (
	rootMaxAllowedUids                 uint16 = 64
	rootMaxRegistrationsPerBlock       uint16 = 1
	rootTargetRegistrationsPerInterval uint16 = 1
	rootAdjustmentInterval             uint16 = 100
	rootWeightsSetRateLimit            uint64 = 100
)

func rootSubnetParams() *dbaccess.SubnetParams {
	return &dbaccess.SubnetParams{
		Tempo:                          RootTempo,
		RegistrationAllowed:            true,
		ImmunityPeriod:                 5000,
		MaxAllowedUids:                 rootMaxAllowedUids,
		MaxAllowedValidators:           rootMaxAllowedUids,
		MinAllowedWeights:              1,
		MaxWeightLimit:                 65535,
		AdjustmentInterval:             rootAdjustmentInterval,
		TargetRegistrationsPerInterval: rootTargetRegistrationsPerInterval,
		MaxRegistrationsPerBlock:       rootMaxRegistrationsPerBlock,
		AdjustmentAlpha:                58000,
		MinBurn:                        100_000_000,
		WeightsSetRateLimit:            rootWeightsSetRateLimit,
	}
}

// defaultSubnetParams is the fixed parameter set every newly created
// subnetwork starts with.
func defaultSubnetParams() *dbaccess.SubnetParams {
	return &dbaccess.SubnetParams{
		Tempo:                          100,
		RegistrationAllowed:            true,
		ImmunityPeriod:                 5000,
		MaxAllowedUids:                 256,
		MaxAllowedValidators:           128,
		MinAllowedWeights:              64,
		MaxWeightLimit:                 511,
		AdjustmentInterval:             500,
		TargetRegistrationsPerInterval: 1,
		MaxRegistrationsPerBlock:       1,
		AdjustmentAlpha:                58000,
		MinBurn:                        100_000_000,
		WeightsSetRateLimit:            100,
	}
}
