package dbaccess

import (
	"github.com/pkg/errors"

	"github.com/rootnet/rootd/infrastructure/db/database"
)

var weightsBucket = database.MakeBucket([]byte("weights"))

// WeightPair is a single sparse weight entry: the target subnetwork and the
// weight magnitude assigned to it.
type WeightPair struct {
	Target uint16
	Value  uint16
}

const weightPairSize = 4

func weightsNetuidBucket(netuid uint16) *database.Bucket {
	return weightsBucket.Bucket(serializeKeyUint16(netuid))
}

func serializeWeightRow(row []WeightPair) []byte {
	serialized := make([]byte, 0, len(row)*weightPairSize)
	for _, pair := range row {
		serialized = append(serialized, serializeUint16(pair.Target)...)
		serialized = append(serialized, serializeUint16(pair.Value)...)
	}
	return serialized
}

func deserializeWeightRow(serialized []byte) ([]WeightPair, error) {
	if len(serialized)%weightPairSize != 0 {
		return nil, errors.Errorf("weight row length %d is not a multiple of %d",
			len(serialized), weightPairSize)
	}
	row := make([]WeightPair, 0, len(serialized)/weightPairSize)
	for i := 0; i < len(serialized); i += weightPairSize {
		target, err := deserializeUint16(serialized[i : i+2])
		if err != nil {
			return nil, err
		}
		value, err := deserializeUint16(serialized[i+2 : i+4])
		if err != nil {
			return nil, err
		}
		row = append(row, WeightPair{Target: target, Value: value})
	}
	return row, nil
}

// StoreWeightRow stores the sparse weight row submitted by the given slot,
// replacing any previously stored row for that slot in its entirety.
func StoreWeightRow(context Context, netuid uint16, uid uint16, row []WeightPair) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := weightsNetuidBucket(netuid).Key(serializeKeyUint16(uid))
	return accessor.Put(key, serializeWeightRow(row))
}

// FetchWeightRow returns the sparse weight row of the given slot.
func FetchWeightRow(context Context, netuid uint16, uid uint16) (row []WeightPair, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	key := weightsNetuidBucket(netuid).Key(serializeKeyUint16(uid))
	serialized, err := accessor.Get(key)
	if err != nil {
		return nil, false, err
	}
	if serialized == nil {
		return nil, false, nil
	}
	row, err = deserializeWeightRow(serialized)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// FetchWeightRows returns every stored weight row of the given subnetwork,
// keyed by slot index.
func FetchWeightRows(context Context, netuid uint16) (map[uint16][]WeightPair, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	cursor, err := accessor.Cursor(weightsNetuidBucket(netuid))
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	rows := make(map[uint16][]WeightPair)
	for cursor.Next() {
		uid, err := deserializeKeyUint16(cursor.Key())
		if err != nil {
			return nil, err
		}
		row, err := deserializeWeightRow(cursor.Value())
		if err != nil {
			return nil, err
		}
		rows[uid] = row
	}
	return rows, cursor.Error()
}

// DeleteWeightRow deletes the weight row of a single slot.
func DeleteWeightRow(context Context, netuid uint16, uid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	key := weightsNetuidBucket(netuid).Key(serializeKeyUint16(uid))
	return accessor.Delete(key)
}

// DeleteWeightRows deletes every weight row stored under the given
// subnetwork.
func DeleteWeightRows(context Context, netuid uint16) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	bucket := weightsNetuidBucket(netuid)
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
