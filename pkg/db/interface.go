// Package db remembers what the user did with marketplace assets between
// sessions. The marketplace stays the source of truth for the assets
// themselves.
package db

import (
	"fmt"
	"time"

	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

var (
	ErrNoInterestFound = fmt.Errorf("no interest found")
)

// Interest records that the seller of an asset was contacted.
type Interest struct {
	AssetID v1.ID     `yaml:"assetID" validate:"required"`
	Title   string    `yaml:"title"`
	Seller  string    `yaml:"seller,omitempty"`
	At      time.Time `yaml:"at" validate:"required"`
}

// InterestLog is the interface a backend satisfies to keep interest records.
type InterestLog interface {
	Get(v1.ID) (Interest, error)
	Record(Interest) error
	ListAll() ([]Interest, error)
	StoragePath() string
}
