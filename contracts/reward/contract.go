package reward

import (
	"github.com/nspcc-dev/lp-staking-contract/common"
	"github.com/nspcc-dev/lp-staking-contract/contracts/reward/rewardconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	circulation = "totalSupply"
	accPrefix   = 'a'

	minterKey = "minter"
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         rewardconst.Symbol,
		Decimals:       rewardconst.Decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	args := data.(struct {
		minter interop.Hash160
	})

	if len(args.minter) != interop.Hash160Len {
		panic(rewardconst.ErrInvalidMinter)
	}

	storage.Put(ctx, minterKey, args.minter)

	runtime.Log("reward contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	common.CheckCommitteeWitness()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("reward contract updated")
}

// Symbol is a NEP-17 standard method that returns reward token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of reward
// token balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns total amount of
// minted reward tokens.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns reward token balance
// of the specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that transfers reward tokens from one
// account to another. It can be invoked only by the account owner.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic(rewardconst.ErrInvalidAddress)
	}

	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount, data)
}

// Mint is a method that creates new reward tokens on the account balance.
// It can be invoked only by the minter contract set on deploy (Staking
// contract).
//
// It produces Transfer notification with empty sender.
func Mint(to interop.Hash160, amount int) {
	if len(to) != interop.Hash160Len {
		panic(rewardconst.ErrInvalidAddress)
	}

	if amount <= 0 {
		panic(rewardconst.ErrNonPositiveAmount)
	}

	ctx := storage.GetContext()

	minter := common.GetHash160(ctx, minterKey)
	if !runtime.GetCallingScriptHash().Equals(minter) {
		panic(rewardconst.ErrNotMinter)
	}

	supply := token.getSupply(ctx)
	storage.Put(ctx, token.CirculationKey, supply+amount)

	token.credit(ctx, to, amount)
	token.postTransfer(nil, to, amount, nil)

	runtime.Log("reward tokens were minted")
}

// Minter returns address of the contract allowed to mint reward tokens.
func Minter() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), minterKey)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, t.CirculationKey)
	if supply != nil {
		return supply.(int)
	}

	return 0
}

func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	balance := storage.Get(ctx, append([]byte{accPrefix}, holder...))
	if balance != nil {
		return balance.(int)
	}

	return 0
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic(rewardconst.ErrNegativeAmount)
	}

	if !isUsableAddress(from) {
		runtime.Log("bad script hashes")
		return false
	}

	amountFrom := t.balanceOf(ctx, from)
	if amountFrom < amount {
		runtime.Log("not enough assets")
		return false
	}

	if amount != 0 && !from.Equals(to) {
		var fromKey = append([]byte{accPrefix}, from...)

		if amountFrom == amount {
			storage.Delete(ctx, fromKey)
		} else {
			storage.Put(ctx, fromKey, amountFrom-amount)
		}

		t.credit(ctx, to, amount)
	}

	t.postTransfer(from, to, amount, data)

	return true
}

func (t Token) credit(ctx storage.Context, to interop.Hash160, amount int) {
	storage.Put(ctx, append([]byte{accPrefix}, to...), t.balanceOf(ctx, to)+amount)
}

// postTransfer notifies about transfer and calls onNEP17Payment of the
// receiver if it is a deployed contract.
func (t Token) postTransfer(from, to interop.Hash160, amount int, data any) {
	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

// isUsableAddress checks if the sender is either a correct NEO address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		// Check if a smart contract is calling script hash
		callingScriptHash := runtime.GetCallingScriptHash()
		if callingScriptHash.Equals(addr) {
			return true
		}
	}

	return false
}
