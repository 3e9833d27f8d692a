package rootnet

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/rootnet/rootd/dbaccess"
	"github.com/rootnet/rootd/util/accountid"
)

// setRootWeightsHarness builds a state with the root network, two
// subnetworks and one registered validator whose rate limit has elapsed.
func setRootWeightsHarness(t *testing.T, testName string) (*testHarness, *testWeightsFixture, func()) {
	harness, teardown := setupTestManager(t, testName, func(config *Config) {
		config.BurnCost = func(uint64, uint64) uint64 { return 0 }
	})

	coldkey := testAccountID(0xc0)
	harness.addFundedNetwork(t, testName, coldkey, 1, 0)
	harness.addFundedNetwork(t, testName, coldkey, 2, 0)
	validator := harness.registerRootValidator(t, testName, 0x01, 100)
	harness.setBlockHeight(t, testName, 102)

	uid, found, err := dbaccess.FetchUIDForHotkey(harness.databaseContext, RootNetuid, validator)
	if err != nil || !found {
		t.Fatalf("%s: FetchUIDForHotkey failed (found: %t, err: %s)", testName, found, err)
	}
	return harness, &testWeightsFixture{validator: validator, uid: uid}, teardown
}

type testWeightsFixture struct {
	validator *accountid.AccountID
	uid       uint16
}

func TestSetRootWeightsErrors(t *testing.T) {
	harness, fixture, teardown := setRootWeightsHarness(t, "TestSetRootWeightsErrors")
	defer teardown()

	tests := []struct {
		name          string
		uids          []uint16
		values        []uint16
		expectedError error
	}{
		{name: "mismatched lengths", uids: []uint16{1}, values: []uint16{1, 2},
			expectedError: ErrWeightVecNotEqualSize},
		{name: "more entries than networks", uids: []uint16{1, 2, 3, 4},
			values: []uint16{1, 1, 1, 1}, expectedError: ErrTooManyUids},
		{name: "duplicate target", uids: []uint16{3, 3}, values: []uint16{1, 2},
			expectedError: ErrDuplicateUids},
		{name: "duplicate invalid target reports the duplicate", uids: []uint16{0, 0},
			values: []uint16{1, 1}, expectedError: ErrDuplicateUids},
		{name: "root network as target", uids: []uint16{0}, values: []uint16{1},
			expectedError: ErrInvalidUid},
		{name: "target beyond network count", uids: []uint16{4}, values: []uint16{1},
			expectedError: ErrInvalidUid},
	}

	for _, test := range tests {
		err := harness.manager.SetRootWeights(fixture.validator, test.uids, test.values)
		if !errors.Is(err, test.expectedError) {
			t.Errorf("TestSetRootWeightsErrors: %s: SetRootWeights returned %v, expected %v",
				test.name, err, test.expectedError)
		}
	}

	// A rejected submission must not leave a row behind.
	_, found, err := dbaccess.FetchWeightRow(harness.databaseContext, RootNetuid, fixture.uid)
	if err != nil {
		t.Fatalf("TestSetRootWeightsErrors: FetchWeightRow unexpectedly failed: %s", err)
	}
	if found {
		t.Errorf("TestSetRootWeightsErrors: a rejected submission left a weight row behind")
	}
}

func TestSetRootWeightsRequiresRegistration(t *testing.T) {
	harness, _, teardown := setRootWeightsHarness(t, "TestSetRootWeightsRequiresRegistration")
	defer teardown()

	stranger := testAccountID(0x99)
	err := harness.manager.SetRootWeights(stranger, []uint16{1}, []uint16{1})
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("TestSetRootWeightsRequiresRegistration: SetRootWeights returned %v, "+
			"expected %v", err, ErrNotRegistered)
	}
}

func TestSetRootWeightsRateLimit(t *testing.T) {
	harness, fixture, teardown := setRootWeightsHarness(t, "TestSetRootWeightsRateLimit")
	defer teardown()

	err := harness.manager.SetRootWeights(fixture.validator, []uint16{1}, []uint16{1})
	if err != nil {
		t.Fatalf("TestSetRootWeightsRateLimit: SetRootWeights unexpectedly failed: %s", err)
	}

	// The next submission must wait out the full rate-limit interval.
	harness.setBlockHeight(t, "TestSetRootWeightsRateLimit", 201)
	err = harness.manager.SetRootWeights(fixture.validator, []uint16{2}, []uint16{1})
	if !errors.Is(err, ErrSettingWeightsTooFast) {
		t.Errorf("TestSetRootWeightsRateLimit: SetRootWeights returned %v, expected %v",
			err, ErrSettingWeightsTooFast)
	}

	harness.setBlockHeight(t, "TestSetRootWeightsRateLimit", 202)
	err = harness.manager.SetRootWeights(fixture.validator, []uint16{2}, []uint16{1})
	if err != nil {
		t.Errorf("TestSetRootWeightsRateLimit: SetRootWeights unexpectedly failed after "+
			"the rate limit elapsed: %s", err)
	}
}

func TestSetRootWeightsUIDBoundary(t *testing.T) {
	harness, fixture, teardown := setRootWeightsHarness(t, "TestSetRootWeightsUIDBoundary")
	defer teardown()

	// With three networks in total, a target of exactly three is accepted
	// even though netuids only go up to two.
	err := harness.manager.SetRootWeights(fixture.validator, []uint16{3}, []uint16{1})
	if err != nil {
		t.Errorf("TestSetRootWeightsUIDBoundary: SetRootWeights returned %v for a "+
			"target equal to the network count, expected it to be accepted", err)
	}
}

func TestSetRootWeightsUpscalesAndOverwrites(t *testing.T) {
	harness, fixture, teardown := setRootWeightsHarness(t, "TestSetRootWeightsUpscalesAndOverwrites")
	defer teardown()

	err := harness.manager.SetRootWeights(fixture.validator, []uint16{1, 2}, []uint16{300, 600})
	if err != nil {
		t.Fatalf("TestSetRootWeightsUpscalesAndOverwrites: SetRootWeights unexpectedly failed: %s", err)
	}
	row, found, err := dbaccess.FetchWeightRow(harness.databaseContext, RootNetuid, fixture.uid)
	if err != nil || !found {
		t.Fatalf("TestSetRootWeightsUpscalesAndOverwrites: FetchWeightRow failed "+
			"(found: %t, err: %s)", found, err)
	}
	expected := []dbaccess.WeightPair{{Target: 1, Value: 32767}, {Target: 2, Value: 65535}}
	if len(row) != len(expected) {
		t.Fatalf("TestSetRootWeightsUpscalesAndOverwrites: FetchWeightRow returned %d "+
			"pairs, expected %d", len(row), len(expected))
	}
	for i, pair := range row {
		if pair != expected[i] {
			t.Errorf("TestSetRootWeightsUpscalesAndOverwrites: pair %d is %+v, expected %+v",
				i, pair, expected[i])
		}
	}

	// A later submission replaces the row entirely rather than merging.
	harness.setBlockHeight(t, "TestSetRootWeightsUpscalesAndOverwrites", 202)
	err = harness.manager.SetRootWeights(fixture.validator, []uint16{2}, []uint16{5})
	if err != nil {
		t.Fatalf("TestSetRootWeightsUpscalesAndOverwrites: SetRootWeights unexpectedly failed: %s", err)
	}
	row, found, err = dbaccess.FetchWeightRow(harness.databaseContext, RootNetuid, fixture.uid)
	if err != nil || !found {
		t.Fatalf("TestSetRootWeightsUpscalesAndOverwrites: FetchWeightRow failed "+
			"(found: %t, err: %s)", found, err)
	}
	if len(row) != 1 || row[0] != (dbaccess.WeightPair{Target: 2, Value: 65535}) {
		t.Errorf("TestSetRootWeightsUpscalesAndOverwrites: FetchWeightRow returned %+v "+
			"after resubmission, expected only target 2 at full weight", row)
	}
}
