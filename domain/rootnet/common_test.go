package rootnet

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
)

// testHarness bundles a Manager with its collaborators and gives tests
// direct access to the underlying database context.
type testHarness struct {
	manager         *Manager
	databaseContext *dbaccess.DatabaseContext
	stakeLedger     *MapStakeLedger
	balanceLedger   *MapBalanceLedger
}

// setupTestManager creates a Manager over a fresh temporary database with
// the root network initialized. configure, when non-nil, may adjust the
// config before the Manager is built.
func setupTestManager(t *testing.T, testName string, configure func(*Config)) (*testHarness, func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	databaseContext, err := dbaccess.New(path)
	if err != nil {
		t.Fatalf("%s: Open unexpectedly failed: %s", testName, err)
	}

	harness := &testHarness{
		databaseContext: databaseContext,
		stakeLedger:     NewMapStakeLedger(),
		balanceLedger:   NewMapBalanceLedger(),
	}
	config := &Config{
		DatabaseContext: databaseContext,
		StakeLedger:     harness.stakeLedger,
		BalanceLedger:   harness.balanceLedger,
	}
	if configure != nil {
		configure(config)
	}
	harness.manager = New(config)
	err = harness.manager.EnsureRootNetwork()
	if err != nil {
		t.Fatalf("%s: EnsureRootNetwork unexpectedly failed: %s", testName, err)
	}

	teardown := func() {
		err := databaseContext.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return harness, teardown
}

// testAccountID builds a deterministic account id from a single fill byte.
func testAccountID(fill byte) *accountid.AccountID {
	id := &accountid.AccountID{}
	for i := range id {
		id[i] = fill
	}
	return id
}

func (h *testHarness) setBlockHeight(t *testing.T, testName string, height uint64) {
	err := dbaccess.StoreBlockHeight(h.databaseContext, height)
	if err != nil {
		t.Fatalf("%s: StoreBlockHeight unexpectedly failed: %s", testName, err)
	}
}

// clearRegistrationCounters zeroes the root network's registration
// allowances so that tests can register several validators back to back.
func (h *testHarness) clearRegistrationCounters(t *testing.T, testName string) {
	err := dbaccess.StoreRegistrationsThisBlock(h.databaseContext, RootNetuid, 0)
	if err != nil {
		t.Fatalf("%s: StoreRegistrationsThisBlock unexpectedly failed: %s", testName, err)
	}
	err = dbaccess.StoreRegistrationsThisInterval(h.databaseContext, RootNetuid, 0)
	if err != nil {
		t.Fatalf("%s: StoreRegistrationsThisInterval unexpectedly failed: %s", testName, err)
	}
}

// registerRootValidator stakes the given amount on a fresh hotkey derived
// from fill, registers it and clears the registration counters so the next
// registration is not throttled.
func (h *testHarness) registerRootValidator(t *testing.T, testName string, fill byte, stake uint64) *accountid.AccountID {
	hotkey := testAccountID(fill)
	h.stakeLedger.SetStake(hotkey, stake)
	err := h.manager.RootRegister(hotkey, hotkey)
	if err != nil {
		t.Fatalf("%s: RootRegister unexpectedly failed: %s", testName, err)
	}
	h.clearRegistrationCounters(t, testName)
	return hotkey
}

// addFundedNetwork advances the height to the given block, credits the
// coldkey with amount and registers a new subnetwork.
func (h *testHarness) addFundedNetwork(t *testing.T, testName string, coldkey *accountid.AccountID, height uint64, amount uint64) {
	h.setBlockHeight(t, testName, height)
	h.balanceLedger.Credit(coldkey, amount)
	err := h.manager.UserAddNetwork(coldkey)
	if err != nil {
		t.Fatalf("%s: UserAddNetwork unexpectedly failed: %s", testName, err)
	}
}
