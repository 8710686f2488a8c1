package httpapi

import (
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/catalog"
)

// --- public storefront ---

func (a *API) handleStorefrontProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	products, err := a.catalog.Storefront(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")), limit)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleStorefrontCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	categories, err := a.catalog.ListCategories(r.Context(), catalog.StatusActive)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// --- catalog administration ---

type createProductRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int64  `json:"stock"`
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	// Every authenticated role may manage products; brand accounts maintain
	// their own listings.
	if !requireRole(w, r, auth.AllRoles...) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		products, err := a.catalog.ListProducts(r.Context(), catalog.ProductFilter{
			CategoryID: strings.TrimSpace(r.URL.Query().Get("category")),
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:      limit,
		})
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})

	case http.MethodPost:
		var req createProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.catalog.CreateProduct(r.Context(), catalog.CreateProductInput{
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
		})
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
			a.auth.RecordAction(r.Context(), actorID, "created product "+p.Name)
		}
		writeJSON(w, http.StatusCreated, p)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int64  `json:"stock"`
	CategoryID  *string `json:"category_id"`
}

func (a *API) handleProductByID(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.AllRoles...) {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/")
	if rest == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		p, err := a.catalog.GetProduct(r.Context(), id)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case len(parts) == 1 && r.Method == http.MethodPut:
		var req updateProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.catalog.UpdateProduct(r.Context(), id, catalog.ProductUpdate{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
			CategoryID:  req.CategoryID,
		})
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPatch:
		status, err := a.catalog.ToggleProductStatus(r.Context(), id)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status})

	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.RoleSuperadmin) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		categories, err := a.catalog.ListCategories(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})

	case http.MethodPost:
		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		cat, err := a.catalog.CreateCategory(r.Context(), req.Name)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
			a.auth.RecordAction(r.Context(), actorID, "created category "+cat.Name)
		}
		writeJSON(w, http.StatusCreated, cat)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.RoleSuperadmin) {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/categories/"), "/")
	if rest == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodPut:
		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		cat, err := a.catalog.RenameCategory(r.Context(), id, req.Name)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cat)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPatch:
		status, err := a.catalog.ToggleCategoryStatus(r.Context(), id)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status})

	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}
