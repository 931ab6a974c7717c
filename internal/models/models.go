package models

import "time"

// AddressQuery identifies a street address in Washington State.
// All three fields are passed through to the rate service verbatim.
type AddressQuery struct {
	Street string `json:"street" yaml:"street" validate:"required,max=256"`
	City   string `json:"city" yaml:"city" validate:"required,max=128"`
	ZIP    string `json:"zip" yaml:"zip" validate:"required,max=10"`
}

// TaxInfo is the sales-tax information reported for an address.
// Rate is always populated; the remaining fields are passthrough
// metadata from the rate service and may be empty.
type TaxInfo struct {
	Rate         float64       `json:"rate" yaml:"rate"`                   // Combined rate as a fraction, e.g. 0.101
	LocalRate    float64       `json:"local_rate" yaml:"local_rate"`       // Local portion of Rate
	LocationCode string        `json:"location_code" yaml:"location_code"` // DOR location code
	ResultCode   ResultCode    `json:"result_code" yaml:"result_code"`     // How the address was matched
	DebugHint    string        `json:"debug_hint,omitempty" yaml:"debug_hint,omitempty"`
	Address      *AddressLine  `json:"address,omitempty" yaml:"address,omitempty"`           // The address as DOR matched it
	Jurisdiction *Jurisdiction `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"` // The taxing jurisdiction
}

// AddressLine is the address range DOR matched the query against.
type AddressLine struct {
	HouseLow  int    `json:"house_low,omitempty" yaml:"house_low,omitempty"`
	HouseHigh int    `json:"house_high,omitempty" yaml:"house_high,omitempty"`
	EvenOdd   string `json:"even_odd,omitempty" yaml:"even_odd,omitempty"`
	Street    string `json:"street,omitempty" yaml:"street,omitempty"`
	ZIP       string `json:"zip,omitempty" yaml:"zip,omitempty"`
	Plus4     string `json:"plus4,omitempty" yaml:"plus4,omitempty"`
	Period    string `json:"period,omitempty" yaml:"period,omitempty"` // Rate period, e.g. Q42025
	RTA       string `json:"rta,omitempty" yaml:"rta,omitempty"`       // Regional transit authority flag
	PTBA      string `json:"ptba,omitempty" yaml:"ptba,omitempty"`     // Public transportation benefit area
	CEZ       string `json:"cez,omitempty" yaml:"cez,omitempty"`       // Community empowerment zone
}

// Jurisdiction is a taxing authority whose rate contributes to TaxInfo.Rate.
type Jurisdiction struct {
	Name      string  `json:"name" yaml:"name"`
	Code      string  `json:"code" yaml:"code"`
	LocalRate float64 `json:"local_rate" yaml:"local_rate"`
	StateRate float64 `json:"state_rate" yaml:"state_rate"`
}

// Lookup outcomes recorded in the audit log and used as metric labels
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeNetwork  = "network"
	OutcomeDecode   = "decode"
)

// LookupRecord is one entry in the lookup audit log.
type LookupRecord struct {
	Street     string     `json:"street" yaml:"street"`
	City       string     `json:"city" yaml:"city"`
	ZIP        string     `json:"zip" yaml:"zip"`
	Outcome    string     `json:"outcome" yaml:"outcome"`
	Rate       float64    `json:"rate,omitempty" yaml:"rate,omitempty"`
	ResultCode ResultCode `json:"result_code" yaml:"result_code"`
	StatusCode int        `json:"status_code,omitempty" yaml:"status_code,omitempty"` // HTTP status from DOR when it rejected the request
	Attempts   int        `json:"attempts" yaml:"attempts"`
	LookedUpAt time.Time  `json:"looked_up_at" yaml:"looked_up_at"`
}

// RecentLookupsResponse is returned by GET /v1/lookups
type RecentLookupsResponse struct {
	Count   int            `json:"count" yaml:"count"`
	Lookups []LookupRecord `json:"lookups" yaml:"lookups"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}
