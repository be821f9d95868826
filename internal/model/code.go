package model

import "time"

// PairingCode links a device push token to a short human-typeable code
// until the code is redeemed or swept.
//
// Codes are not guaranteed unique: issuance samples five lowercase letters
// with replacement and never checks for an existing row. Lookups order by
// created and take the newest match.
type PairingCode struct {
	ID        int64     `db:"id" json:"id"`
	PushToken string    `db:"pushtoken" json:"pushtoken"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created" json:"createdAt"`
}
