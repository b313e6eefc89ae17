package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

var (
	// ErrOwnerWitnessFailed appears when the method must be called
	// by the contract owner but was not.
	ErrOwnerWitnessFailed = "owner witness check failed"
	// ErrAccountWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrAccountWitnessFailed = "account witness check failed"
	// ErrCommitteeWitnessFailed appears when the method must be called by
	// the Neo committee but was not.
	ErrCommitteeWitnessFailed = "only committee can update contract"
)

// CheckOwnerWitness checks witness of the contract owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner []byte) {
	checkWitnessWithPanic(owner, ErrOwnerWitnessFailed)
}

// CheckAccountWitness checks witness of the passed account.
// It panics with ErrAccountWitnessFailed message on fail.
func CheckAccountWitness(account []byte) {
	checkWitnessWithPanic(account, ErrAccountWitnessFailed)
}

// CheckCommitteeWitness checks witness of the Neo committee.
// It panics with ErrCommitteeWitnessFailed message on fail.
func CheckCommitteeWitness() {
	if !HasUpdateAccess() {
		panic(ErrCommitteeWitnessFailed)
	}
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
