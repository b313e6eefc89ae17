/*
Package reward implements Reward contract which is a NEP-17 token paid to
Staking contract participants.

New tokens are created only by Mint method which can be called by the minter
contract set on deploy. Minter is expected to be Staking contract, so the
contract address must be known before deployment (it depends on the sender,
NEF checksum and contract name only).

# Contract notifications

Transfer notification. This is a NEP-17 standard notification. Mint produces
it with null sender.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package reward

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'minter' -> interop.Hash160
   contract allowed to mint tokens
 - 'totalSupply' -> int
   total amount of minted tokens
 - a<interop.Hash160> -> int
   balance sheet of all token holders
*/
