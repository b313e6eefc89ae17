package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/neo"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// CommitteeAddress returns `M = N/2+1` multi signature address of the current
// Neo committee.
func CommitteeAddress() []byte {
	keys := neo.GetCommittee()
	return contract.CreateMultisigAccount(len(keys)/2+1, keys)
}

// HasUpdateAccess returns true if the current Neo committee witnessed the
// contract update.
func HasUpdateAccess() bool {
	return runtime.CheckWitness(CommitteeAddress())
}
