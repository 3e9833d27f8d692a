package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
)

// LevelDBCursor iterates over the keys of a single bucket, in
// lexicographic key order.
type LevelDBCursor struct {
	iterator iterator.Iterator
	prefix   []byte

	isClosed bool
}

// Next moves the iterator to the next key/value pair. It returns false when
// the iterator is exhausted.
func (c *LevelDBCursor) Next() bool {
	if c.isClosed {
		return false
	}
	return c.iterator.Next()
}

// Key returns the key of the current key/value pair, relative to the bucket
// the cursor was opened with.
func (c *LevelDBCursor) Key() []byte {
	fullKey := c.iterator.Key()
	return fullKey[len(c.prefix):]
}

// Value returns the value of the current key/value pair.
func (c *LevelDBCursor) Value() []byte {
	return c.iterator.Value()
}

// Error returns any accumulated iteration error.
func (c *LevelDBCursor) Error() error {
	return errors.WithStack(c.iterator.Error())
}

// Close releases the resources associated with the cursor.
func (c *LevelDBCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	c.iterator.Release()
	return nil
}
