package staking

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ParticipantsPageSize is the number of iterator items fetched from the RPC
// node per request by Participants.
const ParticipantsPageSize = 100

// MaxExpandedParticipants limits the number of participants Participants can
// return from RPC nodes without iterator sessions support.
const MaxExpandedParticipants = 2048

// Participants returns addresses of all accounts that have ever staked in the
// order they are stored in the contract. It uses iterator sessions and falls
// back to in-VM iterator expansion if the RPC node has sessions disabled.
func (c *ContractReader) Participants() ([]util.Uint160, error) {
	sess, iter, err := c.ListParticipants()
	if err != nil {
		if !errors.Is(err, unwrap.ErrNoSessionID) {
			return nil, fmt.Errorf("list participants: %w", err)
		}

		items, err := c.ListParticipantsExpanded(MaxExpandedParticipants)
		if err != nil {
			return nil, fmt.Errorf("list participants without session: %w", err)
		}

		return itemsToAddresses(nil, items)
	}

	defer func() {
		_ = c.invoker.TerminateSession(sess)
	}()

	var res []util.Uint160
	for {
		items, err := c.invoker.TraverseIterator(sess, &iter, ParticipantsPageSize)
		if err != nil {
			return nil, fmt.Errorf("traverse participants iterator: %w", err)
		}

		res, err = itemsToAddresses(res, items)
		if err != nil {
			return nil, err
		}

		if len(items) < ParticipantsPageSize {
			return res, nil
		}
	}
}

func itemsToAddresses(dst []util.Uint160, items []stackitem.Item) ([]util.Uint160, error) {
	for i := range items {
		b, err := items[i].TryBytes()
		if err != nil {
			return nil, fmt.Errorf("participant #%d: %w", len(dst), err)
		}

		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return nil, fmt.Errorf("participant #%d: %w", len(dst), err)
		}

		dst = append(dst, u)
	}

	return dst, nil
}
