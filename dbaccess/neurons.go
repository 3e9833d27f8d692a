package dbaccess

import (
	"github.com/rootnet/rootd/infrastructure/db/database"
	"github.com/rootnet/rootd/util/accountid"
)

var (
	neuronsBucket             = database.MakeBucket([]byte("neurons"))
	uidsBucket                = database.MakeBucket([]byte("uids"))
	subnetworkNBucket         = database.MakeBucket([]byte("subnetworkn"))
	blockAtRegistrationBucket = database.MakeBucket([]byte("blockatregistration"))
	lastUpdateBucket          = database.MakeBucket([]byte("lastupdate"))
	accountsBucket            = database.MakeBucket([]byte("accounts"))
)

// Neuron is one occupied slot of a subnetwork: a slot index bound to a
// hotkey.
type Neuron struct {
	UID    uint16
	Hotkey accountid.AccountID
}

// StoreNeuron binds the given slot of a subnetwork to a hotkey.
func StoreNeuron(context Context, netuid uint16, uid uint16, hotkey *accountid.AccountID) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := neuronsBucket.Bucket(serializeKeyUint16(netuid)).Key(serializeKeyUint16(uid))
	return accessor.Put(key, hotkey.CloneBytes())
}

// FetchNeurons returns every occupied slot of the given subnetwork in
// ascending slot order.
func FetchNeurons(context Context, netuid uint16) ([]Neuron, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	cursor, err := accessor.Cursor(neuronsBucket.Bucket(serializeKeyUint16(netuid)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var neurons []Neuron
	for cursor.Next() {
		uid, err := deserializeKeyUint16(cursor.Key())
		if err != nil {
			return nil, err
		}
		hotkey, err := accountid.New(cursor.Value())
		if err != nil {
			return nil, err
		}
		neurons = append(neurons, Neuron{UID: uid, Hotkey: *hotkey})
	}
	return neurons, cursor.Error()
}

// DeleteNeurons deletes every slot binding of the given subnetwork, along
// with the reverse hotkey mappings, per-slot registration blocks and
// last-update blocks.
func DeleteNeurons(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	neurons, err := FetchNeurons(context, netuid)
	if err != nil {
		return err
	}
	netuidKey := serializeKeyUint16(netuid)
	for _, neuron := range neurons {
		uidKey := serializeKeyUint16(neuron.UID)
		err := accessor.Delete(neuronsBucket.Bucket(netuidKey).Key(uidKey))
		if err != nil {
			return err
		}
		err = accessor.Delete(uidsBucket.Bucket(netuidKey).Key(neuron.Hotkey.CloneBytes()))
		if err != nil {
			return err
		}
		err = accessor.Delete(blockAtRegistrationBucket.Bucket(netuidKey).Key(uidKey))
		if err != nil {
			return err
		}
		err = accessor.Delete(lastUpdateBucket.Bucket(netuidKey).Key(uidKey))
		if err != nil {
			return err
		}
	}
	return accessor.Delete(subnetworkNBucket.Key(netuidKey))
}

// StoreUIDForHotkey stores the hotkey to slot index mapping of a
// subnetwork.
func StoreUIDForHotkey(context Context, netuid uint16, hotkey *accountid.AccountID, uid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := uidsBucket.Bucket(serializeKeyUint16(netuid)).Key(hotkey.CloneBytes())
	return accessor.Put(key, serializeUint16(uid))
}

// FetchUIDForHotkey returns the slot index the given hotkey is bound to on
// the given subnetwork, if any.
func FetchUIDForHotkey(context Context, netuid uint16, hotkey *accountid.AccountID) (uid uint16, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, false, err
	}

	key := uidsBucket.Bucket(serializeKeyUint16(netuid)).Key(hotkey.CloneBytes())
	serialized, err := accessor.Get(key)
	if err != nil {
		return 0, false, err
	}
	if serialized == nil {
		return 0, false, nil
	}
	uid, err = deserializeUint16(serialized)
	if err != nil {
		return 0, false, err
	}
	return uid, true, nil
}

// DeleteUIDForHotkey deletes the hotkey to slot index mapping of a
// subnetwork.
func DeleteUIDForHotkey(context Context, netuid uint16, hotkey *accountid.AccountID) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := uidsBucket.Bucket(serializeKeyUint16(netuid)).Key(hotkey.CloneBytes())
	return accessor.Delete(key)
}

// SubnetworkN returns the number of occupied slots of the given subnetwork.
func SubnetworkN(context Context, netuid uint16) (uint16, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	serialized, err := accessor.Get(subnetworkNBucket.Key(serializeKeyUint16(netuid)))
	if err != nil {
		return 0, err
	}
	if serialized == nil {
		return 0, nil
	}
	return deserializeUint16(serialized)
}

// StoreSubnetworkN stores the number of occupied slots of the given
// subnetwork.
func StoreSubnetworkN(context Context, netuid uint16, n uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(subnetworkNBucket.Key(serializeKeyUint16(netuid)), serializeUint16(n))
}

// StoreBlockAtRegistration stores the block at which the given slot was
// last (re)registered.
func StoreBlockAtRegistration(context Context, netuid uint16, uid uint16, block uint64) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := blockAtRegistrationBucket.Bucket(serializeKeyUint16(netuid)).Key(serializeKeyUint16(uid))
	return accessor.Put(key, serializeUint64(block))
}

// FetchBlockAtRegistration returns the block at which the given slot was
// last (re)registered, or 0 if it never was.
func FetchBlockAtRegistration(context Context, netuid uint16, uid uint16) (uint64, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	key := blockAtRegistrationBucket.Bucket(serializeKeyUint16(netuid)).Key(serializeKeyUint16(uid))
	serialized, err := accessor.Get(key)
	if err != nil {
		return 0, err
	}
	if serialized == nil {
		return 0, nil
	}
	return deserializeUint64(serialized)
}

// StoreLastUpdate stores the block at which the given slot last committed a
// weight submission.
func StoreLastUpdate(context Context, netuid uint16, uid uint16, block uint64) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := lastUpdateBucket.Bucket(serializeKeyUint16(netuid)).Key(serializeKeyUint16(uid))
	return accessor.Put(key, serializeUint64(block))
}

// FetchLastUpdate returns the block at which the given slot last committed
// a weight submission, or 0 if it never did.
func FetchLastUpdate(context Context, netuid uint16, uid uint16) (uint64, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	key := lastUpdateBucket.Bucket(serializeKeyUint16(netuid)).Key(serializeKeyUint16(uid))
	serialized, err := accessor.Get(key)
	if err != nil {
		return 0, err
	}
	if serialized == nil {
		return 0, nil
	}
	return deserializeUint64(serialized)
}

// StoreAccount stores the coldkey owning the given hotkey.
func StoreAccount(context Context, hotkey *accountid.AccountID, coldkey *accountid.AccountID) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(accountsBucket.Key(hotkey.CloneBytes()), coldkey.CloneBytes())
}

// HasAccount returns whether an owning coldkey is recorded for the given
// hotkey.
func HasAccount(context Context, hotkey *accountid.AccountID) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(accountsBucket.Key(hotkey.CloneBytes()))
}
