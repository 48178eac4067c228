package engine

import (
	"shop_go/internal/domain"
)

// TreasuryBalance returns the shop's current native-currency holding. Owner
// only. This is a live read of the shop's account, not a shadow counter.
func (s *Shop) TreasuryBalance(caller domain.Account) (int64, error) {
	const op = "getShopBalance"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return 0, err
	}
	return s.bank.BalanceOf(s.account), nil
}

// WithdrawAll moves the entire treasury balance to the owner, leaving it at
// exactly zero. Owner only. If the currency book refuses the transfer the
// balance is left unchanged.
func (s *Shop) WithdrawAll(caller domain.Account) (int64, error) {
	const op = "withdrawAll"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return 0, err
	}
	balance := s.bank.BalanceOf(s.account)
	if balance == 0 {
		return 0, nil
	}
	if err := s.bank.Transfer(s.account, s.owner, balance); err != nil {
		return 0, domain.Reject(op, domain.ErrTransferFailed)
	}
	return balance, nil
}
