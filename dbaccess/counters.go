package dbaccess

import (
	"github.com/rootnet/rootd/infrastructure/db/database"
)

var (
	registrationsThisBlockBucket    = database.MakeBucket([]byte("registrationsthisblock"))
	registrationsThisIntervalBucket = database.MakeBucket([]byte("registrationsthisinterval"))
)

// RegistrationsThisBlock returns the number of registrations the given
// subnetwork admitted in the current block.
func RegistrationsThisBlock(context Context, netuid uint16) (uint16, error) {
	return fetchUint16OrZero(context, registrationsThisBlockBucket.Key(serializeKeyUint16(netuid)))
}

// StoreRegistrationsThisBlock stores the per-block registration counter of
// the given subnetwork.
func StoreRegistrationsThisBlock(context Context, netuid uint16, count uint16) error {
	return storeUint16(context, registrationsThisBlockBucket.Key(serializeKeyUint16(netuid)), count)
}

// RegistrationsThisInterval returns the number of registrations the given
// subnetwork admitted in the current adjustment interval.
func RegistrationsThisInterval(context Context, netuid uint16) (uint16, error) {
	return fetchUint16OrZero(context, registrationsThisIntervalBucket.Key(serializeKeyUint16(netuid)))
}

// StoreRegistrationsThisInterval stores the per-interval registration
// counter of the given subnetwork.
func StoreRegistrationsThisInterval(context Context, netuid uint16, count uint16) error {
	return storeUint16(context, registrationsThisIntervalBucket.Key(serializeKeyUint16(netuid)), count)
}

// ResetRegistrationsThisBlock resets the per-block registration counters of
// every subnetwork. It is invoked by the block scheduler on every block
// boundary.
func ResetRegistrationsThisBlock(context Context) error {
	return resetCounterBucket(context, registrationsThisBlockBucket)
}

// ResetRegistrationsThisInterval resets the per-interval registration
// counter of a single subnetwork. It is invoked by the block scheduler on
// the subnetwork's adjustment-interval boundaries.
func ResetRegistrationsThisInterval(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(registrationsThisIntervalBucket.Key(serializeKeyUint16(netuid)))
}

// DeleteRegistrationCounters deletes both registration counters of the
// given subnetwork.
func DeleteRegistrationCounters(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	err = accessor.Delete(registrationsThisBlockBucket.Key(serializeKeyUint16(netuid)))
	if err != nil {
		return err
	}
	return accessor.Delete(registrationsThisIntervalBucket.Key(serializeKeyUint16(netuid)))
}

func resetCounterBucket(context Context, bucket *database.Bucket) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	cursor, err := accessor.Cursor(bucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for cursor.Next() {
		err := accessor.Delete(bucket.Key(cursor.Key()))
		if err != nil {
			return err
		}
	}
	return cursor.Error()
}
