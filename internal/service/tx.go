package service

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxRunner is the transaction boundary every mutating service call runs
// inside. *gorm.DB satisfies it; tests substitute an in-memory runner
// that snapshots fake repositories and rolls them back on error.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
