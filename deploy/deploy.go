package deploy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// StakingContractPrm groups deployment parameters of the Staking contract.
type StakingContractPrm struct {
	Common CommonDeployPrm

	// Contract owner allowed to change reward rate and settle all accounts.
	// Defaults to the local account.
	Owner util.Uint160

	// NEP-17 token accepted as stake.
	StakeToken util.Uint160

	// Reward minted per block and its bounds. Set all three equal to get a
	// fixed-rate ledger.
	RewardRate    *big.Int
	MinRewardRate *big.Int
	MaxRewardRate *big.Int
}

// RewardContractPrm groups deployment parameters of the Reward token
// contract.
type RewardContractPrm struct {
	Common CommonDeployPrm
}

// Prm groups all parameters of the deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy contracts to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Contract addresses depend on it.
	LocalAccount *wallet.Account

	StakingContract StakingContractPrm
	RewardContract  RewardContractPrm
}

// Result contains addresses of the deployed contracts.
type Result struct {
	Staking util.Uint160
	Reward  util.Uint160
}

// Deploy deploys Reward token and Staking contracts. Contract addresses
// depend on the local account and contract names only, so both of them are
// known in advance: Reward contract is deployed first with already known
// Staking contract address as the minter.
//
// Deploy is idempotent: contracts already present on the chain are left
// untouched. It aborts by context or when any transaction fails.
func Deploy(ctx context.Context, prm Prm) (Result, error) {
	err := prm.validate()
	if err != nil {
		return Result{}, fmt.Errorf("invalid parameters: %w", err)
	}

	height, err := prm.Blockchain.GetBlockCount()
	if err != nil {
		return Result{}, fmt.Errorf("get current blockchain height: %w", err)
	}

	act, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: prm.LocalAccount.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: deterministicTransactionModifier(func() uint32 { return height }),
	})
	if err != nil {
		return Result{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	return deploy(ctx, prm, deployer{
		blockchain: prm.Blockchain,
		contracts:  management.New(act),
		waiter:     act,
	})
}

type contractSender interface {
	Deploy(exe *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

type txWaiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

type contractStateGetter interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

type deployer struct {
	blockchain contractStateGetter
	contracts  contractSender
	waiter     txWaiter
}

func deploy(ctx context.Context, prm Prm, d deployer) (Result, error) {
	sender := prm.LocalAccount.ScriptHash()

	res := Result{
		Staking: state.CreateContractHash(sender,
			prm.StakingContract.Common.NEF.Checksum, prm.StakingContract.Common.Manifest.Name),
		Reward: state.CreateContractHash(sender,
			prm.RewardContract.Common.NEF.Checksum, prm.RewardContract.Common.Manifest.Name),
	}

	owner := prm.StakingContract.Owner
	if owner.Equals(util.Uint160{}) {
		owner = sender
	}

	prm.Logger.Info("deploying contracts...",
		zap.Stringer("staking", res.Staking), zap.Stringer("reward", res.Reward),
		zap.Stringer("owner", owner))

	err := d.deployContract(ctx, deployContractPrm{
		logger: prm.Logger.With(zap.String("contract", "reward")),
		common: prm.RewardContract.Common,
		hash:   res.Reward,
		args:   []any{res.Staking},
	})
	if err != nil {
		return Result{}, fmt.Errorf("deploy Reward contract: %w", err)
	}

	err = d.deployContract(ctx, deployContractPrm{
		logger: prm.Logger.With(zap.String("contract", "staking")),
		common: prm.StakingContract.Common,
		hash:   res.Staking,
		args: []any{
			owner,
			prm.StakingContract.StakeToken,
			res.Reward,
			prm.StakingContract.RewardRate,
			prm.StakingContract.MinRewardRate,
			prm.StakingContract.MaxRewardRate,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("deploy Staking contract: %w", err)
	}

	prm.Logger.Info("contracts successfully deployed")

	return res, nil
}

type deployContractPrm struct {
	logger *zap.Logger
	common CommonDeployPrm
	hash   util.Uint160
	args   []any
}

func (d deployer) deployContract(ctx context.Context, prm deployContractPrm) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st, err := d.blockchain.GetContractStateByHash(prm.hash)
	if err == nil && st != nil {
		if st.NEF.Checksum != prm.common.NEF.Checksum {
			prm.logger.Warn("contract is already deployed with different executable, update it manually",
				zap.Stringer("address", prm.hash))
		} else {
			prm.logger.Info("contract is already deployed, skip", zap.Stringer("address", prm.hash))
		}
		return nil
	}

	if err != nil && !isErrContractNotFound(err) {
		return fmt.Errorf("get contract state: %w", err)
	}

	prm.logger.Info("contract is missing on the chain, sending deploy transaction...")

	txHash, vub, err := d.contracts.Deploy(&prm.common.NEF, &prm.common.Manifest, prm.args)
	aer, err := d.waiter.Wait(txHash, vub, err)
	if err != nil {
		return fmt.Errorf("send deploy transaction: %w", err)
	}

	if aer.VMState != vmstate.Halt {
		return fmt.Errorf("deploy transaction %s failed: %w (%s)", txHash.StringLE(), errTxFault, aer.FaultException)
	}

	prm.logger.Info("contract successfully deployed",
		zap.Stringer("address", prm.hash), zap.Stringer("tx", txHash))

	return nil
}

var (
	errTxFault       = errors.New("transaction failed")
	errMissingRate   = errors.New("reward rate and its bounds must be set")
	errInvalidBounds = errors.New("invalid reward rate bounds")
	errMissingToken  = errors.New("stake token is not set")
	errMissingAcc    = errors.New("local account is not set")
	errEmptyContract = errors.New("contract executable is not set")
)

func (x Prm) validate() error {
	if x.Logger == nil {
		return errors.New("logger is not set")
	}

	if x.LocalAccount == nil {
		return errMissingAcc
	}

	s := x.StakingContract
	if s.StakeToken.Equals(util.Uint160{}) {
		return errMissingToken
	}

	if s.RewardRate == nil || s.MinRewardRate == nil || s.MaxRewardRate == nil {
		return errMissingRate
	}

	if s.MinRewardRate.Sign() < 0 || s.MinRewardRate.Cmp(s.MaxRewardRate) > 0 ||
		s.RewardRate.Cmp(s.MinRewardRate) < 0 || s.RewardRate.Cmp(s.MaxRewardRate) > 0 {
		return fmt.Errorf("%w: %s <= %s <= %s is not satisfied",
			errInvalidBounds, s.MinRewardRate, s.RewardRate, s.MaxRewardRate)
	}

	if len(s.Common.NEF.Script) == 0 || len(x.RewardContract.Common.NEF.Script) == 0 {
		return errEmptyContract
	}

	return nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's nonce and
// ValidUntilBlock to 100*N and 100*(N+1) correspondingly, where
// 100*N <= current height < 100*(N+1). Repeated deployment attempts within
// the same span produce the same transactions.
func deterministicTransactionModifier(getBlockchainHeight func() uint32) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		curHeight := getBlockchainHeight()
		const span = 100
		n := curHeight / span

		tx.Nonce = n * span

		if math.MaxUint32-span > tx.Nonce {
			tx.ValidUntilBlock = tx.Nonce + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}
