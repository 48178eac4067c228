package ledger

import (
	"errors"
	"testing"

	"shop_go/internal/domain"
)

func newTestBook(t *testing.T) *AssetBook {
	t.Helper()
	book, err := NewAssetBook(5, nil)
	if err != nil {
		t.Fatalf("NewAssetBook failed: %v", err)
	}
	return book
}

func TestAssetBook_MintAndBalance(t *testing.T) {
	book := newTestBook(t)

	if err := book.Mint("shop", 1, 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if got := book.BalanceOf("shop", 1); got != 1000 {
		t.Errorf("BalanceOf = %d, want 1000", got)
	}
	if got := book.BalanceOf("shop", 2); got != 0 {
		t.Errorf("untouched asset balance = %d, want 0", got)
	}
	if got := book.BalanceOf("nobody", 1); got != 0 {
		t.Errorf("unknown holder balance = %d, want 0", got)
	}
}

func TestAssetBook_MintValidation(t *testing.T) {
	book := newTestBook(t)

	if err := book.Mint("shop", 7, 10); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("out-of-range mint err = %v, want ErrUnknownAsset", err)
	}
	if err := book.Mint("shop", 1, 0); !errors.Is(err, ErrBadAmount) {
		t.Errorf("zero mint err = %v, want ErrBadAmount", err)
	}
	if err := book.MintBatch("shop", []domain.AssetID{0, 1}, []int64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatched mint err = %v, want ErrLengthMismatch", err)
	}
}

func TestAssetBook_MintBatchAllOrNothing(t *testing.T) {
	book := newTestBook(t)

	err := book.MintBatch("shop", []domain.AssetID{0, 9}, []int64{5, 5})
	if !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("err = %v, want ErrUnknownAsset", err)
	}
	if got := book.BalanceOf("shop", 0); got != 0 {
		t.Errorf("balance after failed batch = %d, want 0", got)
	}
}

func TestAssetBook_Transfer(t *testing.T) {
	book := newTestBook(t)
	book.Mint("shop", 2, 100)

	if err := book.Transfer("shop", "shop", "alice", 2, 40); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got := book.BalanceOf("shop", 2); got != 60 {
		t.Errorf("shop balance = %d, want 60", got)
	}
	if got := book.BalanceOf("alice", 2); got != 40 {
		t.Errorf("alice balance = %d, want 40", got)
	}

	t.Run("insufficient balance", func(t *testing.T) {
		err := book.Transfer("shop", "shop", "alice", 2, 61)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("err = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("operator not approved", func(t *testing.T) {
		err := book.Transfer("shop", "alice", "shop", 2, 10)
		if !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("err = %v, want ErrNotAuthorized", err)
		}
	})

	t.Run("approved operator", func(t *testing.T) {
		book.SetApprovalForAll("alice", "shop", true)
		if !book.IsApprovedForAll("alice", "shop") {
			t.Fatal("approval not recorded")
		}
		if err := book.Transfer("shop", "alice", "shop", 2, 10); err != nil {
			t.Errorf("approved transfer failed: %v", err)
		}
		book.SetApprovalForAll("alice", "shop", false)
		if book.IsApprovedForAll("alice", "shop") {
			t.Error("approval not revoked")
		}
	})
}

func TestAssetBook_TransferBatchAllOrNothing(t *testing.T) {
	book := newTestBook(t)
	book.MintBatch("shop", []domain.AssetID{0, 1}, []int64{10, 10})

	// Second line overdraws; first line must not land.
	err := book.TransferBatch("shop", "shop", "bob", []domain.AssetID{0, 1}, []int64{5, 11})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := book.BalanceOf("shop", 0); got != 10 {
		t.Errorf("shop balance(0) = %d, want 10", got)
	}
	if got := book.BalanceOf("bob", 0); got != 0 {
		t.Errorf("bob balance(0) = %d, want 0", got)
	}
}

func TestAssetBook_TransferBatchRepeatedID(t *testing.T) {
	book := newTestBook(t)
	book.Mint("shop", 0, 10)

	// Two lines of the same id must be validated against the combined total.
	err := book.TransferBatch("shop", "shop", "bob", []domain.AssetID{0, 0}, []int64{6, 6})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if err := book.TransferBatch("shop", "shop", "bob", []domain.AssetID{0, 0}, []int64{6, 4}); err != nil {
		t.Fatalf("repeated-id transfer within balance failed: %v", err)
	}
	if got := book.BalanceOf("bob", 0); got != 10 {
		t.Errorf("bob balance = %d, want 10", got)
	}
}

func TestAssetBook_Burn(t *testing.T) {
	book := newTestBook(t)
	book.Mint("shop", 3, 50)

	if err := book.Burn("shop", 3, 20); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	if got := book.BalanceOf("shop", 3); got != 30 {
		t.Errorf("balance after burn = %d, want 30", got)
	}
	if err := book.Burn("shop", 3, 31); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overburn err = %v, want ErrInsufficientBalance", err)
	}
}

func TestAssetBook_BalanceOfBatch(t *testing.T) {
	book := newTestBook(t)
	book.MintBatch("shop", []domain.AssetID{0, 1, 2}, []int64{7, 8, 9})

	got := book.BalanceOfBatch(
		[]domain.Account{"shop", "shop", "alice"},
		[]domain.AssetID{0, 2, 1},
	)
	want := []int64{7, 9, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("balances[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAssetBook_URI(t *testing.T) {
	uris := []string{"u0", "u1", "u2", "u3", "u4"}
	book, err := NewAssetBook(5, uris)
	if err != nil {
		t.Fatalf("NewAssetBook failed: %v", err)
	}
	if got := book.URI(3); got != "u3" {
		t.Errorf("URI(3) = %q, want u3", got)
	}
	if got := book.URI(9); got != "" {
		t.Errorf("URI(9) = %q, want empty", got)
	}
}

func TestNativeBook(t *testing.T) {
	bank := NewNativeBook()
	bank.Deposit("alice", 1000)

	if got := bank.BalanceOf("alice"); got != 1000 {
		t.Errorf("balance = %d, want 1000", got)
	}

	if err := bank.Transfer("alice", "shop", 300); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got := bank.BalanceOf("alice"); got != 700 {
		t.Errorf("alice = %d, want 700", got)
	}
	if got := bank.BalanceOf("shop"); got != 300 {
		t.Errorf("shop = %d, want 300", got)
	}

	t.Run("insufficient funds", func(t *testing.T) {
		if err := bank.Transfer("alice", "shop", 701); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("err = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("zero transfer is a no-op", func(t *testing.T) {
		if err := bank.Transfer("alice", "shop", 0); err != nil {
			t.Errorf("zero transfer err = %v", err)
		}
	})
}
