// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlledger answers which artifacts of a date are already on disk.
//
// There is no separate database: an artifact file existing at its
// deterministic path is the record that it was downloaded.
package sbsctlledger

import (
	"encoding/json"
	"fmt"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlpath"
	"github.com/bufdev/sbsctl/internal/standard/xtime"
	"github.com/spf13/afero"
)

// Currency identifies one of the two rate views published per date.
type Currency int

const (
	// CurrencyDomestic is the domestic-currency (soles) view.
	CurrencyDomestic Currency = iota + 1
	// CurrencyForeign is the foreign-currency (dollars) view.
	CurrencyForeign
)

// AllCurrencies lists the currencies in the order they are exported.
var AllCurrencies = []Currency{CurrencyDomestic, CurrencyForeign}

// Code returns the file name prefix for the currency.
func (c Currency) Code() string {
	switch c {
	case CurrencyDomestic:
		return "MN"
	case CurrencyForeign:
		return "ME"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	switch c {
	case CurrencyDomestic:
		return "domestic"
	case CurrencyForeign:
		return "foreign"
	default:
		return fmt.Sprintf("Currency(%d)", int(c))
	}
}

// CurrencySet is a set of currencies.
type CurrencySet struct {
	domestic bool
	foreign  bool
}

// NewCurrencySet returns a set containing the given currencies.
func NewCurrencySet(currencies ...Currency) CurrencySet {
	var set CurrencySet
	for _, currency := range currencies {
		switch currency {
		case CurrencyDomestic:
			set.domestic = true
		case CurrencyForeign:
			set.foreign = true
		}
	}
	return set
}

// Contains reports whether the currency is in the set.
func (s CurrencySet) Contains(currency Currency) bool {
	switch currency {
	case CurrencyDomestic:
		return s.domestic
	case CurrencyForeign:
		return s.foreign
	default:
		return false
	}
}

// IsEmpty reports whether the set has no currencies.
func (s CurrencySet) IsEmpty() bool {
	return !s.domestic && !s.foreign
}

// Currencies returns the members in export order.
func (s CurrencySet) Currencies() []Currency {
	var currencies []Currency
	for _, currency := range AllCurrencies {
		if s.Contains(currency) {
			currencies = append(currencies, currency)
		}
	}
	return currencies
}

// Len returns the number of currencies in the set.
func (s CurrencySet) Len() int {
	return len(s.Currencies())
}

// MarshalJSON marshals the set as a list of currency codes.
func (s CurrencySet) MarshalJSON() ([]byte, error) {
	codes := make([]string, 0, 2)
	for _, currency := range s.Currencies() {
		codes = append(codes, currency.Code())
	}
	return json.Marshal(codes)
}

// ArtifactFilePath returns the path of the artifact for the currency and date
// within a month directory.
func ArtifactFilePath(monthDirPath string, currency Currency, date xtime.Date) string {
	return sbsctlpath.ArtifactFilePath(monthDirPath, currency.Code(), date)
}

// ArtifactExists reports whether the artifact for the currency and date exists.
func ArtifactExists(fs afero.Fs, monthDirPath string, currency Currency, date xtime.Date) (bool, error) {
	filePath := ArtifactFilePath(monthDirPath, currency, date)
	exists, err := afero.Exists(fs, filePath)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", filePath, err)
	}
	return exists, nil
}

// MissingArtifacts returns the currencies whose artifact for the date does not
// exist in the month directory. The filesystem is checked on every call.
func MissingArtifacts(fs afero.Fs, monthDirPath string, date xtime.Date) (CurrencySet, error) {
	var missing []Currency
	for _, currency := range AllCurrencies {
		exists, err := ArtifactExists(fs, monthDirPath, currency, date)
		if err != nil {
			return CurrencySet{}, err
		}
		if !exists {
			missing = append(missing, currency)
		}
	}
	return NewCurrencySet(missing...), nil
}
