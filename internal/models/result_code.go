package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ResultCode is the match code DOR reports with every rate response.
//
// Codes 0-5 carry a usable rate. Codes 6, 7 and 9 mean the rate fields
// are garbage (DOR reports -1 or similar) and must not be returned as a
// rate. Code 8 is not assigned.
type ResultCode int

const (
	CodeAddressFound             ResultCode = 0
	CodeAddressNotFoundZipFound  ResultCode = 1
	CodeAddressUpdatedFound      ResultCode = 2
	CodeAddressUpdatedZipFound   ResultCode = 3
	CodeAddressCorrectedFound    ResultCode = 4
	CodeZip5FoundNoAddressOrZip4 ResultCode = 5
	CodeNoAddressNoZip           ResultCode = 6
	CodeInvalidLatLong           ResultCode = 7
	CodeInternalError            ResultCode = 9
)

var resultCodeNames = map[ResultCode]string{
	CodeAddressFound:             "address found",
	CodeAddressNotFoundZipFound:  "address not found, zip+4 found",
	CodeAddressUpdatedFound:      "address updated and found",
	CodeAddressUpdatedZipFound:   "address updated, zip+4 found",
	CodeAddressCorrectedFound:    "address corrected and found",
	CodeZip5FoundNoAddressOrZip4: "zip5 found, no address or zip+4 match",
	CodeNoAddressNoZip:           "no address and no zip match",
	CodeInvalidLatLong:           "invalid latitude/longitude",
	CodeInternalError:            "DOR internal error",
}

// ParseResultCode parses the numeric code attribute of a DOR response.
func ParseResultCode(s string) (ResultCode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("result code %q is not an integer", s)
	}
	code := ResultCode(n)
	if !code.Known() {
		return 0, fmt.Errorf("result code %d is not a known DOR code", n)
	}
	return code, nil
}

// Known reports whether c is one of the codes DOR documents.
func (c ResultCode) Known() bool {
	_, ok := resultCodeNames[c]
	return ok
}

// IsError reports whether the rate values accompanying c are unusable.
func (c ResultCode) IsError() bool {
	switch c {
	case CodeNoAddressNoZip, CodeInvalidLatLong, CodeInternalError:
		return true
	}
	return false
}

// Retryable reports whether asking again may produce a different answer.
func (c ResultCode) Retryable() bool {
	return c == CodeInternalError
}

func (c ResultCode) String() string {
	if name, ok := resultCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown code %d", int(c))
}
