package http

import (
	"net/http"
	"strconv"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     logger.Logger
}

func NewCatalogHandler(catalog service.CatalogService, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log.With("handler", "catalog")}
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.log.Errorf("Failed to load categories: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondOK(w, http.StatusOK, "", toCategoryResponses(tree))
}

func (h *CatalogHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.ListingFilter{
		Query:      q.Get("q"),
		CategoryID: q.Get("categoryId"),
	}

	var errs []string
	parseFloat := func(name string, dst *float64) {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs = append(errs, name+" must be a number")
				return
			}
			*dst = v
		}
	}
	parseInt := func(name string, dst *int) {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, name+" must be an integer")
				return
			}
			*dst = v
		}
	}
	parseFloat("minPrice", &filter.MinPrice)
	parseFloat("maxPrice", &filter.MaxPrice)
	parseInt("page", &filter.Page)
	parseInt("limit", &filter.Limit)
	if len(errs) > 0 {
		respondError(w, http.StatusBadRequest, "invalid query parameters", errs...)
		return
	}

	page, err := h.catalog.SearchListings(r.Context(), filter)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Errorf("Failed to search listings: %v", err)
			respondError(w, status, "internal server error")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	out := listingPageResponse{
		Listings: make([]listingResponse, 0, len(page.Listings)),
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
	}
	for _, l := range page.Listings {
		out.Listings = append(out.Listings, toListingResponse(l))
	}
	respondOK(w, http.StatusOK, "", out)
}

func (h *CatalogHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.catalog.GetListing(r.Context(), chi.URLParam(r, "listingId"))
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Errorf("Failed to load listing: %v", err)
			respondError(w, status, "internal server error")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	respondOK(w, http.StatusOK, "", toListingResponse(listing))
}
