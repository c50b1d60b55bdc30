// Package service contains application services for custodial key management
// and transaction assembly.
package service

import (
	"fmt"

	"github.com/gomintco/gomint-api/internal/hedera"
)

// Operator is the service-owned account that pays for bookkeeping
// transactions (account/token/topic creation) on one network.
type Operator struct {
	ID  hedera.EntityID
	Key hedera.PrivateKey
}

// Clients hands out execution clients bound to a fee-payer identity. The
// concrete ledger connection behind a client is an opaque RPC boundary.
type Clients interface {
	// ForPayer returns a client bound to the given fee payer on the network.
	ForPayer(network hedera.Network, payer hedera.EntityID) (hedera.Client, error)
	// Operator returns the service operator and a client bound to it.
	Operator(network hedera.Network) (Operator, hedera.Client, error)
}

// Ledger is one network's connection, able to bind clients to a fee payer.
type Ledger interface {
	ClientFor(payer hedera.EntityID) hedera.Client
}

// ClientSet implements Clients over a set of per-network ledger connections
// and their configured operators.
type ClientSet struct {
	ledgers   map[hedera.Network]Ledger
	operators map[hedera.Network]Operator
}

// NewClientSet builds a client set. Networks without both a ledger and an
// operator are unusable and reported as errors at call time.
func NewClientSet(ledgers map[hedera.Network]Ledger, operators map[hedera.Network]Operator) *ClientSet {
	return &ClientSet{ledgers: ledgers, operators: operators}
}

// ForPayer returns a client on the network bound to the given fee payer.
func (c *ClientSet) ForPayer(network hedera.Network, payer hedera.EntityID) (hedera.Client, error) {
	ledger, ok := c.ledgers[network]
	if !ok {
		return nil, fmt.Errorf("network %s is not configured", network)
	}
	return ledger.ClientFor(payer), nil
}

// Operator returns the network's operator and a client paying from it.
func (c *ClientSet) Operator(network hedera.Network) (Operator, hedera.Client, error) {
	op, ok := c.operators[network]
	if !ok {
		return Operator{}, nil, fmt.Errorf("no operator configured for network %s", network)
	}
	client, err := c.ForPayer(network, op.ID)
	if err != nil {
		return Operator{}, nil, err
	}
	return op, client, nil
}
