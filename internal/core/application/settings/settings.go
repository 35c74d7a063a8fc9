package settings

import (
	"fmt"
	"sync"

	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

// Settings holds the process-wide configuration of the exchange: the
// administrative identity, fixed at initialization, the account holding the
// custody of deposited assets, the fee percentage applied to settlements and
// the reference to the external asset registry. There is no ambient state,
// every service receives the same instance and mutations go through the
// admin-gated setters of the operator service.
type Settings struct {
	admin           string
	exchangeAccount string

	lock          sync.RWMutex
	feePercentage uint
	registry      ports.AssetRegistry
}

// NewSettings returns the settings of a marketplace administered by the
// given identity. The admin identity cannot be rotated afterwards.
func NewSettings(
	admin, exchangeAccount string,
	feePercentage uint, registry ports.AssetRegistry,
) (*Settings, error) {
	if len(admin) <= 0 {
		return nil, fmt.Errorf("missing admin identity")
	}
	if len(exchangeAccount) <= 0 {
		return nil, fmt.Errorf("missing exchange custody account")
	}
	if feePercentage > 100 {
		return nil, domain.ErrInvalidFeePercentage
	}
	if registry == nil {
		return nil, fmt.Errorf("missing asset registry")
	}

	return &Settings{
		admin:           admin,
		exchangeAccount: exchangeAccount,
		feePercentage:   feePercentage,
		registry:        registry,
	}, nil
}

// Admin returns the administrative identity, also acting as fee recipient.
func (s *Settings) Admin() string {
	return s.admin
}

// ExchangeAccount returns the identity under which the exchange holds the
// custody of deposited assets.
func (s *Settings) ExchangeAccount() string {
	return s.exchangeAccount
}

// IsAdmin returns whether the given identity is the administrator.
func (s *Settings) IsAdmin(caller string) bool {
	return caller == s.admin
}

// FeePercentage returns the fee percentage currently applied to settlements.
func (s *Settings) FeePercentage() uint {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.feePercentage
}

// SetFeePercentage stores a new fee percentage for all subsequent
// settlements. It is not retroactive, the fee is computed at purchase time.
func (s *Settings) SetFeePercentage(feePercentage uint) error {
	if feePercentage > 100 {
		return domain.ErrInvalidFeePercentage
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.feePercentage = feePercentage
	return nil
}

// Registry returns the current asset registry reference.
func (s *Settings) Registry() ports.AssetRegistry {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.registry
}

// SetRegistry replaces the asset registry reference unconditionally. The
// operator service is in charge of refusing the rotation while listings
// reference assets under the previous registry.
func (s *Settings) SetRegistry(registry ports.AssetRegistry) error {
	if registry == nil {
		return fmt.Errorf("missing asset registry")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.registry = registry
	return nil
}
