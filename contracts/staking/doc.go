/*
Package staking implements Staking contract which keeps proportional reward
ledger of stake token deposits.

Users deposit stake token (any NEP-17 token chosen on deploy) and accrue
reward token proportionally to their share of total stake. Total reward per
block is defined by the reward rate, which can be changed by the contract
owner within bounds set on deploy. Ledger with fixed rate is deployed with
equal bounds.

Reward is settled lazily. Every account has a checkpoint (block height of
the last settlement), and reward for blocks passed since the checkpoint is
computed on the next account operation as

	rate * (now - checkpoint) * staked / totalStaked

Owner can settle all participants at once with DistributeRewardsAll. Settled
reward is minted on ClaimRewards by the reward token contract which must
trust Staking contract as its minter.

Deposit can be made with Deposit method or by a plain stake token transfer to
the contract address. Deposit calls stake token transfer on behalf of the
depositor, so the depositor's witness scope must cover the stake token
contract (CustomContracts with the stake token, or a witness rule allowing
it). CalledByEntry alone is enough for the plain transfer only.

# Contract notifications

Deposit notification. This notification is produced when stake is deposited.

	Deposit:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. This notification is produced when the whole stake of
the account is returned.

	Withdraw:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

RewardsClaimed notification. This notification is produced when pending reward
is minted to the account.

	RewardsClaimed:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

RewardsDistributed notification. This notification is produced when the owner
settles reward of all participants.

	RewardsDistributed:
	  - name: caller
	    type: Hash160

RewardRateChanged notification. This notification is produced when the owner
changes reward rate.

	RewardRateChanged:
	  - name: old
	    type: Integer
	  - name: new
	    type: Integer

OwnershipTransferred notification. This notification is produced when the
contract owner is changed.

	OwnershipTransferred:
	  - name: old
	    type: Hash160
	  - name: new
	    type: Hash160
*/
package staking

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'owner' -> interop.Hash160
   contract owner allowed to change rate and distribute rewards
 - 'stakeToken' -> interop.Hash160
   accepted NEP-17 stake token
 - 'rewardToken' -> interop.Hash160
   reward token with `mint` method
 - 'rewardRate', 'minRewardRate', 'maxRewardRate' -> int
   reward per block and its bounds
 - 'totalStaked' -> int
   sum of all account stakes
 - 'numParticipants' -> int
   number of accounts that have ever staked
 - a<interop.Hash160> -> std.Serialize(Account)
   staking state of the account (here Account is a structure defined in current package)
 - p<interop.Hash160> -> int
   participant registry, value is the join index of the account
*/
