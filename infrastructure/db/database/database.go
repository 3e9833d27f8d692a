package database

// DataAccessor defines the common interface by which data gets accessed,
// whether via the database directly or via an open transaction.
type DataAccessor interface {
	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key []byte, value []byte) error

	// Get gets the value for the given key. It returns nil if
	// the given key does not exist.
	Get(key []byte) ([]byte, error)

	// Has returns true if the database does contains the
	// given key.
	Has(key []byte) (bool, error)

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key []byte) error

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *Bucket) (Cursor, error)
}

// Database defines the interface of a database that can begin
// transactions and be closed.
type Database interface {
	DataAccessor

	// Begin begins a new database transaction.
	Begin() (Transaction, error)

	// Close closes the database.
	Close() error
}

// Transaction is a database transaction. Reads observe a snapshot of the
// database taken when the transaction began; writes are staged and become
// visible only once Commit is called.
//
// Note: transactions provide data consistency over the state of the
// database as it was when the transaction started. There is NO guarantee
// that if one puts data into the transaction then it will be available
// to get within the same transaction.
type Transaction interface {
	DataAccessor

	// Rollback rolls back whatever changes were made to the
	// database within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database
	// within this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back changes that were made to
	// the database within the transaction, unless the transaction
	// had already been closed using either Rollback or Commit.
	RollbackUnlessClosed() error
}

// Cursor iterates over database entries given some bucket.
type Cursor interface {
	// Next moves the iterator to the next key/value pair. It returns false
	// when the iterator is exhausted.
	Next() bool

	// Key returns the key of the current key/value pair, relative to the
	// bucket the cursor was opened with. The returned slice is only valid
	// until the next call to Next.
	Key() []byte

	// Value returns the value of the current key/value pair. The returned
	// slice is only valid until the next call to Next.
	Value() []byte

	// Error returns any accumulated iteration error.
	Error() error

	// Close releases the resources associated with the cursor.
	Close() error
}
