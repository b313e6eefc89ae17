/*
Package monitor exports state of the LP Staking contract as Prometheus
metrics.

Monitor periodically reads global ledger figures and, optionally, state of
every participant account through the contract RPC bindings. Values are
exposed as gauges in the "lpstaking" namespace:

	lpstaking_ledger_total_staked
	lpstaking_ledger_reward_rate
	lpstaking_ledger_participants
	lpstaking_account_staked{address}
	lpstaking_account_pending_rewards{address}
	lpstaking_monitor_poll_failures_total
*/
package monitor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/nspcc-dev/lp-staking-contract/rpc/staking"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const namespace = "lpstaking"

// Reader provides state of the Staking contract. It is implemented by
// [staking.ContractReader].
type Reader interface {
	TotalStaked() (*big.Int, error)
	RewardRate() (*big.Int, error)
	ParticipantsCount() (*big.Int, error)
	Participants() ([]util.Uint160, error)
	GetAccount(util.Uint160) (*staking.StakingAccount, error)
	PendingRewards(util.Uint160) (*big.Int, error)
}

// Prm groups Monitor parameters.
type Prm struct {
	Logger *zap.Logger

	Reader Reader

	// Registerer to register metrics in. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Export state of every participant account. Makes two RPC calls per
	// participant on each poll.
	Accounts bool
}

// Monitor polls Staking contract state and updates metrics.
type Monitor struct {
	log      *zap.Logger
	reader   Reader
	accounts bool

	totalStaked  prometheus.Gauge
	rewardRate   prometheus.Gauge
	participants prometheus.Gauge

	accountStaked  *prometheus.GaugeVec
	accountPending *prometheus.GaugeVec

	pollFailures prometheus.Counter
}

// New creates Monitor and registers its metrics.
func New(prm Prm) (*Monitor, error) {
	reg := prm.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Monitor{
		log:      prm.Logger,
		reader:   prm.Reader,
		accounts: prm.Accounts,

		totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "total_staked",
			Help:      "Sum of all staked amounts",
		}),
		rewardRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "reward_rate",
			Help:      "Total reward minted per block",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "participants",
			Help:      "Number of accounts that have ever staked",
		}),
		accountStaked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "account",
			Name:      "staked",
			Help:      "Amount staked by the account",
		}, []string{"address"}),
		accountPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "account",
			Name:      "pending_rewards",
			Help:      "Reward the account would get if it claimed in the current block",
		}, []string{"address"}),
		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "poll_failures_total",
			Help:      "Number of failed contract state polls",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.totalStaked,
		m.rewardRate,
		m.participants,
		m.accountStaked,
		m.accountPending,
		m.pollFailures,
	} {
		err := reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	return m, nil
}

// Poll reads current contract state and updates all metrics.
func (m *Monitor) Poll() error {
	total, err := m.reader.TotalStaked()
	if err != nil {
		return fmt.Errorf("read total stake: %w", err)
	}

	rate, err := m.reader.RewardRate()
	if err != nil {
		return fmt.Errorf("read reward rate: %w", err)
	}

	n, err := m.reader.ParticipantsCount()
	if err != nil {
		return fmt.Errorf("read number of participants: %w", err)
	}

	m.totalStaked.Set(toFloat(total))
	m.rewardRate.Set(toFloat(rate))
	m.participants.Set(toFloat(n))

	if !m.accounts {
		return nil
	}

	addrs, err := m.reader.Participants()
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}

	for i := range addrs {
		acc, err := m.reader.GetAccount(addrs[i])
		if err != nil {
			return fmt.Errorf("read account %s: %w", addrs[i].StringLE(), err)
		}

		pending, err := m.reader.PendingRewards(addrs[i])
		if err != nil {
			return fmt.Errorf("read pending rewards of %s: %w", addrs[i].StringLE(), err)
		}

		label := address.Uint160ToString(addrs[i])
		m.accountStaked.WithLabelValues(label).Set(toFloat(acc.Staked))
		m.accountPending.WithLabelValues(label).Set(toFloat(pending))
	}

	return nil
}

// Run polls contract state every interval until the context is done. Poll
// failures are logged and counted, they do not stop Run.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	m.poll()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-t.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	err := m.Poll()
	if err != nil {
		m.pollFailures.Inc()
		m.log.Error("failed to poll staking contract state", zap.Error(err))
		return
	}

	m.log.Debug("staking contract state polled")
}

func toFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}
