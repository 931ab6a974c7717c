package v1

import (
	"github.com/evyataryagoni/wataxrate/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /v1/* endpoints
func SetupRoutes(taxHandler *handler.TaxHandler) chi.Router {
	r := chi.NewRouter()

	// GET /v1/tax-rate?addr=<street>&city=<city>&zip=<zip>
	r.Get("/tax-rate", taxHandler.GetRate)

	// GET /v1/lookups?limit=<n>
	r.Get("/lookups", taxHandler.RecentLookups)

	return r
}
