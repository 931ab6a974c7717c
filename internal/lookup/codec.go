package lookup

import (
	"net/url"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// Codec translates between the caller-facing types and one rate
// service's wire format. Swapping the codec (and base URL) retargets the
// client without touching models.TaxInfo or LookupError.
type Codec interface {
	// Encode returns the query parameters identifying q.
	Encode(q models.AddressQuery) url.Values

	// Decode parses a 2xx response body. It returns a *LookupError of
	// KindRemoteRejected for in-band failures and any other error for
	// bodies that do not match the expected structure.
	Decode(body []byte) (*models.TaxInfo, error)
}
