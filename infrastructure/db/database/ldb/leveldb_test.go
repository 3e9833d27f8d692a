package ldb

import (
	"bytes"
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/rootnet/rootd/infrastructure/db/database"
)

func setupLevelDB(t *testing.T, testName string) (*LevelDB, func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	ldb, err := NewLevelDB(path)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}
	teardown := func() {
		err := ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return ldb, teardown
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardown := setupLevelDB(t, "TestLevelDBSanity")
	defer teardown()

	// Put something into the db
	key := []byte("key")
	putData := []byte("Hello world!")
	err := ldb.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put returned "+
			"unexpected error: %s", err)
	}

	// Get from the key previously put to
	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned "+
			"unexpected error: %s", err)
	}

	// Make sure that the put data and the get data are equal
	if !reflect.DeepEqual(getData, putData) {
		t.Fatalf("TestLevelDBSanity: get data and "+
			"put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	// Delete and make sure the key is gone
	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete returned "+
			"unexpected error: %s", err)
	}
	has, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Has returned "+
			"unexpected error: %s", err)
	}
	if has {
		t.Fatalf("TestLevelDBSanity: Has returned "+
			"true for a deleted key")
	}
	getData, err = ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned "+
			"unexpected error for a deleted key: %s", err)
	}
	if getData != nil {
		t.Fatalf("TestLevelDBSanity: Get returned %s "+
			"for a deleted key, expected nil", string(getData))
	}
}

func TestLevelDBTransactionSanity(t *testing.T) {
	ldb, teardown := setupLevelDB(t, "TestLevelDBTransactionSanity")
	defer teardown()

	// Case 1. Write in a transaction and commit it
	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin "+
			"unexpectedly failed: %s", err)
	}
	key := []byte("key")
	putData := []byte("Hello world!")
	err = tx.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put "+
			"returned unexpected error: %s", err)
	}

	// The write must not be visible outside the transaction before
	// the commit
	has, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Has "+
			"returned unexpected error: %s", err)
	}
	if has {
		t.Fatalf("TestLevelDBTransactionSanity: Has returned " +
			"true for a key staged in an uncommitted transaction")
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Commit "+
			"returned unexpected error: %s", err)
	}
	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Get "+
			"returned unexpected error: %s", err)
	}
	if !reflect.DeepEqual(getData, putData) {
		t.Fatalf("TestLevelDBTransactionSanity: get "+
			"data and put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	// Case 2. Write in a transaction and roll it back
	tx, err = ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin "+
			"unexpectedly failed: %s", err)
	}
	rolledBackKey := []byte("rolledBackKey")
	err = tx.Put(rolledBackKey, putData)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put "+
			"returned unexpected error: %s", err)
	}
	err = tx.Rollback()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Rollback "+
			"returned unexpected error: %s", err)
	}
	has, err = ldb.Has(rolledBackKey)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Has "+
			"returned unexpected error: %s", err)
	}
	if has {
		t.Fatalf("TestLevelDBTransactionSanity: Has returned " +
			"true for a key whose transaction was rolled back")
	}
}

func TestLevelDBTransactionSnapshotIsolation(t *testing.T) {
	ldb, teardown := setupLevelDB(t, "TestLevelDBTransactionSnapshotIsolation")
	defer teardown()

	key := []byte("key")
	before := []byte("before")
	err := ldb.Put(key, before)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSnapshotIsolation: Put "+
			"returned unexpected error: %s", err)
	}

	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSnapshotIsolation: Begin "+
			"unexpectedly failed: %s", err)
	}
	defer tx.RollbackUnlessClosed()

	// A write after the transaction began must not be visible inside it
	err = ldb.Put(key, []byte("after"))
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSnapshotIsolation: Put "+
			"returned unexpected error: %s", err)
	}
	getData, err := tx.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSnapshotIsolation: Get "+
			"returned unexpected error: %s", err)
	}
	if !reflect.DeepEqual(getData, before) {
		t.Fatalf("TestLevelDBTransactionSnapshotIsolation: Get "+
			"returned %s, expected the snapshot value %s",
			string(getData), string(before))
	}
}

func TestCursorSanity(t *testing.T) {
	ldb, teardown := setupLevelDB(t, "TestCursorSanity")
	defer teardown()

	bucket := database.MakeBucket([]byte("bucket"))
	otherBucket := database.MakeBucket([]byte("other"))
	entries := []struct {
		key   []byte
		value []byte
	}{
		{key: []byte("a"), value: []byte("1")},
		{key: []byte("b"), value: []byte("2")},
		{key: []byte("c"), value: []byte("3")},
	}
	for _, entry := range entries {
		err := ldb.Put(bucket.Key(entry.key), entry.value)
		if err != nil {
			t.Fatalf("TestCursorSanity: Put returned "+
				"unexpected error: %s", err)
		}
	}
	// An entry outside the bucket must not show up in the cursor
	err := ldb.Put(otherBucket.Key([]byte("d")), []byte("4"))
	if err != nil {
		t.Fatalf("TestCursorSanity: Put returned "+
			"unexpected error: %s", err)
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("TestCursorSanity: Cursor returned "+
			"unexpected error: %s", err)
	}
	defer cursor.Close()

	i := 0
	for cursor.Next() {
		if i >= len(entries) {
			t.Fatalf("TestCursorSanity: the cursor returned "+
				"more than %d entries", len(entries))
		}
		if !bytes.Equal(cursor.Key(), entries[i].key) {
			t.Errorf("TestCursorSanity: entry %d has key %s, "+
				"expected %s", i, string(cursor.Key()), string(entries[i].key))
		}
		if !bytes.Equal(cursor.Value(), entries[i].value) {
			t.Errorf("TestCursorSanity: entry %d has value %s, "+
				"expected %s", i, string(cursor.Value()), string(entries[i].value))
		}
		i++
	}
	if err := cursor.Error(); err != nil {
		t.Fatalf("TestCursorSanity: the cursor finished "+
			"with an unexpected error: %s", err)
	}
	if i != len(entries) {
		t.Fatalf("TestCursorSanity: the cursor returned %d "+
			"entries, expected %d", i, len(entries))
	}
}
