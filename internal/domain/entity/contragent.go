package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContrAgent is a business partner received from 1C, unique by TIN.
type ContrAgent struct {
	ID        string
	Name      string
	TIN       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContrAgentBalance holds the prepayment/debt figures for a ContrAgent.
// Exactly one balance row exists per agent. Amounts are decimals, never
// binary floats, so repeated syncs do not drift.
type ContrAgentBalance struct {
	ID           string
	ContrAgentID string
	Prepayment   decimal.Decimal
	Debt         decimal.Decimal
	UpdatedAt    time.Time
	LastSyncAt   *time.Time
}
