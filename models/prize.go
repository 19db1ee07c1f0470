package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PrizeKind tags what a reward actually is
type PrizeKind string

const (
	PrizeKindCash     PrizeKind = "cash"
	PrizeKindCoupon   PrizeKind = "coupon"
	PrizeKindEntry    PrizeKind = "entry"
	PrizeKindPhysical PrizeKind = "physical"
)

// Prize is a tagged variant. Only the fields relevant to Kind may be set:
// cash carries Amount, coupon and physical carry Description, entry carries nothing.
type Prize struct {
	Kind        PrizeKind       `gorm:"type:varchar(16);not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"amount,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
}

func CashPrize(amount decimal.Decimal) Prize {
	return Prize{Kind: PrizeKindCash, Amount: amount}
}

func CouponPrize(description string) Prize {
	return Prize{Kind: PrizeKindCoupon, Description: description}
}

func EntryPrize() Prize {
	return Prize{Kind: PrizeKindEntry}
}

func PhysicalPrize(description string) Prize {
	return Prize{Kind: PrizeKindPhysical, Description: description}
}

// Validate rejects prizes whose fields do not match their tag.
func (p Prize) Validate() error {
	switch p.Kind {
	case PrizeKindCash:
		if !p.Amount.IsPositive() {
			return fmt.Errorf("cash prize needs a positive amount, got %s", p.Amount)
		}
		if p.Description != "" {
			return errors.New("cash prize cannot carry a description")
		}
	case PrizeKindCoupon, PrizeKindPhysical:
		if p.Description == "" {
			return fmt.Errorf("%s prize needs a description", p.Kind)
		}
		if !p.Amount.IsZero() {
			return fmt.Errorf("%s prize cannot carry an amount", p.Kind)
		}
	case PrizeKindEntry:
		if !p.Amount.IsZero() || p.Description != "" {
			return errors.New("entry prize carries no amount or description")
		}
	default:
		return fmt.Errorf("unknown prize kind %q", p.Kind)
	}
	return nil
}

// MarshalJSON writes only the fields that belong to the prize's kind.
func (p Prize) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind        PrizeKind        `json:"kind"`
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		Description string           `json:"description,omitempty"`
	}{Kind: p.Kind, Description: p.Description}
	if p.Kind == PrizeKindCash {
		out.Amount = &p.Amount
	}
	return json.Marshal(out)
}

func (p Prize) String() string {
	switch p.Kind {
	case PrizeKindCash:
		return "$" + p.Amount.StringFixed(2)
	case PrizeKindEntry:
		return "draw entry"
	default:
		return p.Description
	}
}

// RewardLevel is one row of the ascending reward table.
// Threshold is the global click count that triggers the prize.
type RewardLevel struct {
	Threshold int64 `json:"threshold"`
	Prize     Prize `json:"prize"`
}
