package http

import (
	"net/http"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/catalog"
)

// CatalogHandler normalizes product-listing URLs. The listing itself is
// served elsewhere; this endpoint owns the filter/query-string contract.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

type ListingResponseDTO struct {
	Filters catalog.FilterState `json:"filters"`
	Query   string              `json:"query"`
}

// Listing parses the filter state out of the query string and redirects to
// the canonical encoding when the incoming query differs from it. The
// equality check is the loop guard: a canonical request is served in place,
// never redirected again.
func (h *CatalogHandler) Listing(w http.ResponseWriter, r *http.Request) {
	filters := catalog.ParseQuery(r.URL.RawQuery)
	canonical := filters.Encode()

	if canonical != r.URL.RawQuery {
		target := r.URL.Path
		if canonical != "" {
			target += "?" + canonical
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	respondJSON(w, http.StatusOK, ListingResponseDTO{
		Filters: filters,
		Query:   canonical,
	})
}
