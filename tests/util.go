package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/emit"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	stakingPath = "../contracts/staking"
	rewardPath  = "../contracts/reward"
)

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// stakingEnv groups deployed Staking and Reward contracts. Staking contract
// is owned by the committee and accepts GAS as a stake token.
type stakingEnv struct {
	e *neotest.Executor

	// committee (owner) invokers
	staking *neotest.ContractInvoker
	reward  *neotest.ContractInvoker
	gas     *neotest.ContractInvoker
}

func newStakingEnv(t *testing.T, rate, minRate, maxRate int64) *stakingEnv {
	return newStakingEnvWithMinter(t, nil, rate, minRate, maxRate)
}

// newStakingEnvWithMinter is like newStakingEnv but deploys Reward contract
// trusting the given minter instead of Staking contract if it is set.
func newStakingEnvWithMinter(t *testing.T, minter *util.Uint160, rate, minRate, maxRate int64) *stakingEnv {
	e := newExecutor(t)

	ctrStaking := neotest.CompileFile(t, e.CommitteeHash, stakingPath, path.Join(stakingPath, "config.yml"))
	ctrReward := neotest.CompileFile(t, e.CommitteeHash, rewardPath, path.Join(rewardPath, "config.yml"))

	gasHash, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)

	// Reward contract trusts Staking contract which is not deployed yet, its
	// address is already known.
	rewardMinter := ctrStaking.Hash
	if minter != nil {
		rewardMinter = *minter
	}

	e.DeployContract(t, ctrReward, []any{rewardMinter})
	e.DeployContract(t, ctrStaking, []any{e.CommitteeHash, gasHash, ctrReward.Hash, rate, minRate, maxRate})

	return &stakingEnv{
		e:       e,
		staking: e.CommitteeInvoker(ctrStaking.Hash),
		reward:  e.CommitteeInvoker(ctrReward.Hash),
		gas:     e.CommitteeInvoker(gasHash),
	}
}

// as returns Staking contract invoker signed by the given signers.
func (s *stakingEnv) as(signers ...neotest.Signer) *neotest.ContractInvoker {
	return s.staking.WithSigners(signers...)
}

// skipBlocks adds n empty blocks to the chain.
func (s *stakingEnv) skipBlocks(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		s.e.AddNewBlock(t)
	}
}

type call struct {
	hash   util.Uint160
	method string
	args   []any
}

func (s *stakingEnv) stakingCall(method string, args ...any) call {
	return call{hash: s.staking.Hash, method: method, args: args}
}

// invokeInOneTx executes all calls within a single transaction, so all of them
// see the same block height.
func (s *stakingEnv) invokeInOneTx(t *testing.T, signers []neotest.Signer, calls ...call) *state.AppExecResult {
	tx := s.e.PrepareInvocation(t, callsScript(t, calls), signers)
	s.e.AddNewBlock(t, tx)
	return s.e.CheckHalt(t, tx.Hash())
}

// invokeInOneTxFail is like invokeInOneTx but expects transaction to fail
// with the given message.
func (s *stakingEnv) invokeInOneTxFail(t *testing.T, msg string, signers []neotest.Signer, calls ...call) {
	tx := s.e.PrepareInvocation(t, callsScript(t, calls), signers)
	s.e.AddNewBlock(t, tx)
	s.e.CheckFault(t, tx.Hash(), msg)
}

// invokeScoped executes calls within a single transaction signed by the
// signer with the given witness scope. Contracts are allowed to use the
// witness for transaction.CustomContracts scope.
func (s *stakingEnv) invokeScoped(t *testing.T, signer neotest.Signer, scopes transaction.WitnessScope,
	contracts []util.Uint160, calls ...call) util.Uint256 {
	tx := transaction.New(callsScript(t, calls), 0)
	tx.Nonce = neotest.Nonce()
	tx.ValidUntilBlock = s.e.Chain.BlockHeight() + 1
	tx.Signers = []transaction.Signer{{
		Account:          signer.ScriptHash(),
		Scopes:           scopes,
		AllowedContracts: contracts,
	}}

	neotest.AddNetworkFee(s.e.Chain, tx, signer)
	neotest.AddSystemFee(s.e.Chain, tx, -1)
	require.NoError(t, signer.SignTx(s.e.Chain.GetConfig().Magic, tx))

	s.e.AddNewBlock(t, tx)

	return tx.Hash()
}

func callsScript(t *testing.T, calls []call) []byte {
	w := io.NewBufBinWriter()
	for _, c := range calls {
		emit.AppCall(w.BinWriter, c.hash, c.method, callflag.All, c.args...)
	}
	require.NoError(t, w.Err)

	return w.Bytes()
}

type account struct {
	staked     *big.Int
	checkpoint *big.Int
	pending    *big.Int
	hasStaked  bool
	isStaking  bool
}

func (s *stakingEnv) getAccount(t *testing.T, h util.Uint160) account {
	st, err := s.staking.TestInvoke(t, "getAccount", h)
	require.NoError(t, err)

	arr, ok := st.Pop().Item().Value().([]stackitem.Item)
	require.True(t, ok)
	require.Len(t, arr, 5)

	var (
		res account
		e1  error
		e2  error
		e3  error
		e4  error
		e5  error
	)
	res.staked, e1 = arr[0].TryInteger()
	res.checkpoint, e2 = arr[1].TryInteger()
	res.pending, e3 = arr[2].TryInteger()
	res.hasStaked, e4 = arr[3].TryBool()
	res.isStaking, e5 = arr[4].TryBool()
	for _, err := range []error{e1, e2, e3, e4, e5} {
		require.NoError(t, err)
	}

	return res
}

func (s *stakingEnv) readInt(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) *big.Int {
	st, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)

	n, err := st.Pop().Item().TryInteger()
	require.NoError(t, err)

	return n
}

func (s *stakingEnv) totalStaked(t *testing.T) *big.Int {
	return s.readInt(t, s.staking, "totalStaked")
}

func (s *stakingEnv) pendingRewards(t *testing.T, h util.Uint160) *big.Int {
	return s.readInt(t, s.staking, "pendingRewards", h)
}

func (s *stakingEnv) rewardBalance(t *testing.T, h util.Uint160) *big.Int {
	return s.readInt(t, s.reward, "balanceOf", h)
}

func (s *stakingEnv) custodyBalance(t *testing.T) *big.Int {
	return s.readInt(t, s.gas, "balanceOf", s.staking.Hash)
}

// eventsByName returns items of all notifications with the given name thrown
// by the contract.
func eventsByName(aer *state.AppExecResult, contract util.Uint160, name string) [][]stackitem.Item {
	var res [][]stackitem.Item
	for _, ev := range aer.Events {
		if ev.Name == name && ev.ScriptHash.Equals(contract) {
			res = append(res, ev.Item.Value().([]stackitem.Item))
		}
	}
	return res
}

func bigMul(xs ...int64) *big.Int {
	res := big.NewInt(1)
	for _, x := range xs {
		res.Mul(res, big.NewInt(x))
	}
	return res
}
