package dbaccess

import (
	"github.com/pkg/errors"

	"github.com/rootnet/rootd/infrastructure/db/database"
	"github.com/rootnet/rootd/util/accountid"
)

var (
	subnetsBucket       = database.MakeBucket([]byte("subnets"))
	emissionBucket      = database.MakeBucket([]byte("emission"))
	lockedBalanceBucket = database.MakeBucket([]byte("lockedbalance"))
	registeredAtBucket  = database.MakeBucket([]byte("registeredat"))
	ownerBucket         = database.MakeBucket([]byte("owner"))
	chainStateBucket    = database.MakeBucket([]byte("chainstate"))
)

var (
	totalNetworksKey         = chainStateBucket.Key([]byte("totalnetworks"))
	subnetLimitKey           = chainStateBucket.Key([]byte("subnetlimit"))
	networkLastRegisteredKey = chainStateBucket.Key([]byte("networklastregistered"))
	lastBurnBlockKey         = chainStateBucket.Key([]byte("lastburnblock"))
	lastBurnAmountKey        = chainStateBucket.Key([]byte("lastburnamount"))
	blockHeightKey           = chainStateBucket.Key([]byte("blockheight"))
)

// SubnetParams holds the scalar parameters of one subnetwork.
type SubnetParams struct {
	Tempo                          uint16
	RegistrationAllowed            bool
	ImmunityPeriod                 uint16
	MaxAllowedUids                 uint16
	MaxAllowedValidators           uint16
	MinAllowedWeights              uint16
	MaxWeightLimit                 uint16
	AdjustmentInterval             uint16
	TargetRegistrationsPerInterval uint16
	MaxRegistrationsPerBlock       uint16
	AdjustmentAlpha                uint64
	MinBurn                        uint64
	WeightsSetRateLimit            uint64
}

const serializedSubnetParamsSize = 9*2 + 1 + 3*8

func serializeSubnetParams(params *SubnetParams) []byte {
	serialized := make([]byte, 0, serializedSubnetParamsSize)
	serialized = append(serialized, serializeUint16(params.Tempo)...)
	if params.RegistrationAllowed {
		serialized = append(serialized, 1)
	} else {
		serialized = append(serialized, 0)
	}
	serialized = append(serialized, serializeUint16(params.ImmunityPeriod)...)
	serialized = append(serialized, serializeUint16(params.MaxAllowedUids)...)
	serialized = append(serialized, serializeUint16(params.MaxAllowedValidators)...)
	serialized = append(serialized, serializeUint16(params.MinAllowedWeights)...)
	serialized = append(serialized, serializeUint16(params.MaxWeightLimit)...)
	serialized = append(serialized, serializeUint16(params.AdjustmentInterval)...)
	serialized = append(serialized, serializeUint16(params.TargetRegistrationsPerInterval)...)
	serialized = append(serialized, serializeUint16(params.MaxRegistrationsPerBlock)...)
	serialized = append(serialized, serializeUint64(params.AdjustmentAlpha)...)
	serialized = append(serialized, serializeUint64(params.MinBurn)...)
	serialized = append(serialized, serializeUint64(params.WeightsSetRateLimit)...)
	return serialized
}

func deserializeSubnetParams(serialized []byte) (*SubnetParams, error) {
	if len(serialized) != serializedSubnetParamsSize {
		return nil, errors.Errorf("unexpected subnet params length %d, want %d",
			len(serialized), serializedSubnetParamsSize)
	}

	params := &SubnetParams{}
	offset := 0
	readUint16 := func() uint16 {
		value, _ := deserializeUint16(serialized[offset : offset+2])
		offset += 2
		return value
	}
	readUint64 := func() uint64 {
		value, _ := deserializeUint64(serialized[offset : offset+8])
		offset += 8
		return value
	}

	params.Tempo = readUint16()
	params.RegistrationAllowed = serialized[offset] != 0
	offset++
	params.ImmunityPeriod = readUint16()
	params.MaxAllowedUids = readUint16()
	params.MaxAllowedValidators = readUint16()
	params.MinAllowedWeights = readUint16()
	params.MaxWeightLimit = readUint16()
	params.AdjustmentInterval = readUint16()
	params.TargetRegistrationsPerInterval = readUint16()
	params.MaxRegistrationsPerBlock = readUint16()
	params.AdjustmentAlpha = readUint64()
	params.MinBurn = readUint64()
	params.WeightsSetRateLimit = readUint64()
	return params, nil
}

// StoreSubnet stores the parameter record of a subnetwork, bringing the
// subnetwork into existence if it did not exist.
func StoreSubnet(context Context, netuid uint16, params *SubnetParams) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(subnetsBucket.Key(serializeKeyUint16(netuid)), serializeSubnetParams(params))
}

// FetchSubnet returns the parameter record of a subnetwork.
func FetchSubnet(context Context, netuid uint16) (params *SubnetParams, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(subnetsBucket.Key(serializeKeyUint16(netuid)))
	if err != nil {
		return nil, false, err
	}
	if serialized == nil {
		return nil, false, nil
	}
	params, err = deserializeSubnetParams(serialized)
	if err != nil {
		return nil, false, err
	}
	return params, true, nil
}

// HasSubnet returns whether the subnetwork exists.
func HasSubnet(context Context, netuid uint16) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(subnetsBucket.Key(serializeKeyUint16(netuid)))
}

// DeleteSubnet deletes the parameter record of a subnetwork.
func DeleteSubnet(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(subnetsBucket.Key(serializeKeyUint16(netuid)))
}

// FetchSubnetNetuids returns the netuids of all existing subnetworks in
// ascending order.
func FetchSubnetNetuids(context Context) ([]uint16, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	cursor, err := accessor.Cursor(subnetsBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var netuids []uint16
	for cursor.Next() {
		netuid, err := deserializeKeyUint16(cursor.Key())
		if err != nil {
			return nil, err
		}
		netuids = append(netuids, netuid)
	}
	return netuids, cursor.Error()
}

func fetchUint16OrZero(context Context, key []byte) (uint16, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	serialized, err := accessor.Get(key)
	if err != nil {
		return 0, err
	}
	if serialized == nil {
		return 0, nil
	}
	return deserializeUint16(serialized)
}

func fetchUint64OrZero(context Context, key []byte) (uint64, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	serialized, err := accessor.Get(key)
	if err != nil {
		return 0, err
	}
	if serialized == nil {
		return 0, nil
	}
	return deserializeUint64(serialized)
}

func storeUint16(context Context, key []byte, value uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(key, serializeUint16(value))
}

func storeUint64(context Context, key []byte, value uint64) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(key, serializeUint64(value))
}

// TotalNetworks returns the number of existing subnetworks, the root
// network included.
func TotalNetworks(context Context) (uint16, error) {
	return fetchUint16OrZero(context, totalNetworksKey)
}

// StoreTotalNetworks stores the number of existing subnetworks.
func StoreTotalNetworks(context Context, total uint16) error {
	return storeUint16(context, totalNetworksKey, total)
}

// SubnetLimit returns the hard cap on the number of subnetworks.
func SubnetLimit(context Context) (uint16, error) {
	return fetchUint16OrZero(context, subnetLimitKey)
}

// StoreSubnetLimit stores the hard cap on the number of subnetworks.
func StoreSubnetLimit(context Context, limit uint16) error {
	return storeUint16(context, subnetLimitKey, limit)
}

// FetchEmission returns the emission value last assigned to the given
// subnetwork.
func FetchEmission(context Context, netuid uint16) (uint64, error) {
	return fetchUint64OrZero(context, emissionBucket.Key(serializeKeyUint16(netuid)))
}

// StoreEmission stores the emission value of the given subnetwork.
func StoreEmission(context Context, netuid uint16, emission uint64) error {
	return storeUint64(context, emissionBucket.Key(serializeKeyUint16(netuid)), emission)
}

// DeleteEmission deletes the emission value of the given subnetwork.
func DeleteEmission(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(emissionBucket.Key(serializeKeyUint16(netuid)))
}

// FetchLockedBalance returns the balance locked when the given subnetwork
// was registered.
func FetchLockedBalance(context Context, netuid uint16) (uint64, error) {
	return fetchUint64OrZero(context, lockedBalanceBucket.Key(serializeKeyUint16(netuid)))
}

// StoreLockedBalance stores the balance locked for the given subnetwork.
func StoreLockedBalance(context Context, netuid uint16, amount uint64) error {
	return storeUint64(context, lockedBalanceBucket.Key(serializeKeyUint16(netuid)), amount)
}

// DeleteLockedBalance deletes the locked balance record of the given
// subnetwork.
func DeleteLockedBalance(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(lockedBalanceBucket.Key(serializeKeyUint16(netuid)))
}

// FetchNetworkRegisteredAt returns the block at which the given subnetwork
// was registered.
func FetchNetworkRegisteredAt(context Context, netuid uint16) (uint64, error) {
	return fetchUint64OrZero(context, registeredAtBucket.Key(serializeKeyUint16(netuid)))
}

// StoreNetworkRegisteredAt stores the block at which the given subnetwork
// was registered.
func StoreNetworkRegisteredAt(context Context, netuid uint16, block uint64) error {
	return storeUint64(context, registeredAtBucket.Key(serializeKeyUint16(netuid)), block)
}

// DeleteNetworkRegisteredAt deletes the registration block record of the
// given subnetwork.
func DeleteNetworkRegisteredAt(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(registeredAtBucket.Key(serializeKeyUint16(netuid)))
}

// FetchSubnetOwner returns the coldkey that registered the given
// subnetwork.
func FetchSubnetOwner(context Context, netuid uint16) (owner *accountid.AccountID, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(ownerBucket.Key(serializeKeyUint16(netuid)))
	if err != nil {
		return nil, false, err
	}
	if serialized == nil {
		return nil, false, nil
	}
	owner, err = accountid.New(serialized)
	if err != nil {
		return nil, false, err
	}
	return owner, true, nil
}

// StoreSubnetOwner stores the coldkey that registered the given
// subnetwork.
func StoreSubnetOwner(context Context, netuid uint16, owner *accountid.AccountID) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(ownerBucket.Key(serializeKeyUint16(netuid)), owner.CloneBytes())
}

// DeleteSubnetOwner deletes the owner record of the given subnetwork.
func DeleteSubnetOwner(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(ownerBucket.Key(serializeKeyUint16(netuid)))
}

// FetchNetworkLastRegistered returns the block at which a subnetwork was
// last registered, chain-wide.
func FetchNetworkLastRegistered(context Context) (uint64, error) {
	return fetchUint64OrZero(context, networkLastRegisteredKey)
}

// StoreNetworkLastRegistered stores the block at which a subnetwork was
// last registered, chain-wide.
func StoreNetworkLastRegistered(context Context, block uint64) error {
	return storeUint64(context, networkLastRegisteredKey, block)
}

// FetchLastBurnBlock returns the block of the last network-creation burn.
func FetchLastBurnBlock(context Context) (uint64, error) {
	return fetchUint64OrZero(context, lastBurnBlockKey)
}

// StoreLastBurnBlock stores the block of the last network-creation burn.
func StoreLastBurnBlock(context Context, block uint64) error {
	return storeUint64(context, lastBurnBlockKey, block)
}

// FetchLastBurnAmount returns the amount of the last network-creation burn.
func FetchLastBurnAmount(context Context) (uint64, error) {
	return fetchUint64OrZero(context, lastBurnAmountKey)
}

// StoreLastBurnAmount stores the amount of the last network-creation burn.
func StoreLastBurnAmount(context Context, amount uint64) error {
	return storeUint64(context, lastBurnAmountKey, amount)
}

// BlockHeight returns the current block height.
func BlockHeight(context Context) (uint64, error) {
	return fetchUint64OrZero(context, blockHeightKey)
}

// StoreBlockHeight stores the current block height.
func StoreBlockHeight(context Context, height uint64) error {
	return storeUint64(context, blockHeightKey, height)
}
