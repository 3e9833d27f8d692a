package rootnet

// These constants are used to identify a specific RuleError.
var (
	// ErrWeightVecNotEqualSize indicates a weight submission whose uid list
	// and value list have different lengths.
	ErrWeightVecNotEqualSize = newRuleError("ErrWeightVecNotEqualSize")

	// ErrTooManyUids indicates a weight submission carrying more entries
	// than there are subnetworks.
	ErrTooManyUids = newRuleError("ErrTooManyUids")

	// ErrNotRegistered indicates the calling hotkey holds no slot on the
	// root network.
	ErrNotRegistered = newRuleError("ErrNotRegistered")

	// ErrSettingWeightsTooFast indicates the slot submitted weights again
	// before the rate-limit interval since its previous submission elapsed.
	ErrSettingWeightsTooFast = newRuleError("ErrSettingWeightsTooFast")

	// ErrDuplicateUids indicates a weight submission naming the same target
	// subnetwork more than once.
	ErrDuplicateUids = newRuleError("ErrDuplicateUids")

	// ErrInvalidUid indicates a weight submission naming the root network
	// or a uid beyond the subnetwork count.
	ErrInvalidUid = newRuleError("ErrInvalidUid")

	// ErrNetworkDoesNotExist indicates the targeted network is absent or
	// admits no slots.
	ErrNetworkDoesNotExist = newRuleError("ErrNetworkDoesNotExist")

	// ErrTooManyRegistrationsThisBlock indicates the per-block registration
	// allowance is exhausted.
	ErrTooManyRegistrationsThisBlock = newRuleError("ErrTooManyRegistrationsThisBlock")

	// ErrTooManyRegistrationsThisInterval indicates the per-interval
	// registration allowance is exhausted.
	ErrTooManyRegistrationsThisInterval = newRuleError("ErrTooManyRegistrationsThisInterval")

	// ErrAlreadyRegistered indicates the hotkey already holds a root slot.
	ErrAlreadyRegistered = newRuleError("ErrAlreadyRegistered")

	// ErrStakeTooLowForRoot indicates the hotkey's stake does not strictly
	// exceed the lowest-staked incumbent on a full root network.
	ErrStakeTooLowForRoot = newRuleError("ErrStakeTooLowForRoot")

	// ErrTxRateLimitExceeded indicates a network registration arrived too
	// soon after the previous one.
	ErrTxRateLimitExceeded = newRuleError("ErrTxRateLimitExceeded")

	// ErrCouldNotConvertToBalance indicates the network lock amount does
	// not fit the balance representation.
	ErrCouldNotConvertToBalance = newRuleError("ErrCouldNotConvertToBalance")

	// ErrNotEnoughBalanceToStake indicates the caller's spendable balance
	// does not cover the network lock amount.
	ErrNotEnoughBalanceToStake = newRuleError("ErrNotEnoughBalanceToStake")

	// ErrBalanceWithdrawalError indicates withdrawing the network lock
	// amount failed even though the balance pre-check passed.
	ErrBalanceWithdrawalError = newRuleError("ErrBalanceWithdrawalError")
)

// RuleError identifies a rule violation. Every rejected request surfaces as
// exactly one RuleError and leaves no trace in persisted state. Use
// errors.Is to match against the named errors above.
type RuleError struct {
	message string
}

func (e RuleError) Error() string {
	return e.message
}

func newRuleError(message string) RuleError {
	return RuleError{message: message}
}
