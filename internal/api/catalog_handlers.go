package api

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"artflora/internal/constants"
	"artflora/internal/models"
)

// --- Товары ---

func (s *server) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Store.ListProducts(r.Context(), true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, products)
}

// GetProduct отдает карточку товара. Снятый с продажи товар для витрины не существует.
func (s *server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := s.deps.Store.GetProductByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !p.IsAvailable {
		writeJSONError(w, http.StatusNotFound, "Товар не найден")
		return
	}
	writeJSONSuccess(w, p)
}

func (s *server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Store.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, categories)
}

type productRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	CategoryID  int64  `json:"category_id" validate:"gte=0"`
	IsAvailable *bool  `json:"is_available"`
}

func (req productRequest) toProduct() models.Product {
	p := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: models.NewNullString(strings.TrimSpace(req.Description)),
		Price:       req.Price,
		ImageURL:    models.NewNullString(strings.TrimSpace(req.ImageURL)),
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if req.CategoryID > 0 {
		p.CategoryID = models.NewNullInt64(req.CategoryID)
	}
	return p
}

func (s *server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p := req.toProduct()
	if err := s.deps.Store.CreateProduct(r.Context(), &p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "product": p})
}

func (s *server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p := req.toProduct()
	p.ID = id
	if err := s.deps.Store.UpdateProduct(r.Context(), p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "product": p})
}

func (s *server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Store.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// --- Настройки ---

// GetSettings возвращает все настройки как key -> JSON.
func (s *server) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Store.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make(map[string]json.RawMessage, len(settings))
	for key, setting := range settings {
		out[key] = setting.Value
	}
	writeJSONSuccess(w, out)
}

type updateSettingRequest struct {
	Key   string          `json:"key" validate:"required,max=100"`
	Value json.RawMessage `json:"value" validate:"required"`
}

func (s *server) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.deps.Store.UpsertSetting(r.Context(), req.Key, req.Value); err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.WithFields(log.Fields{"key": req.Key, "admin": callerID(r.Context())}).Info("Настройка обновлена")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// --- Темы ---

func (s *server) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.deps.Store.ListThemes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, themes)
}

// updateThemesRequest - ровно одно из полей: тема, узор шапки или эффект.
type updateThemesRequest struct {
	ThemeID *int64  `json:"theme_id" validate:"omitempty,gt=0"`
	Pattern *string `json:"pattern" validate:"omitempty,oneof=dots lines flowers none"`
	Effect  *string `json:"effect" validate:"omitempty,oneof=snow rain none"`
}

func (s *server) UpdateThemes(w http.ResponseWriter, r *http.Request) {
	var req updateThemesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	ctx := r.Context()

	switch {
	case req.ThemeID != nil:
		if err := s.deps.Store.ActivateTheme(ctx, *req.ThemeID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSONSuccess(w, map[string]interface{}{"theme_id": *req.ThemeID, "active": true})

	case req.Pattern != nil:
		value, _ := json.Marshal(map[string]interface{}{
			"active":   *req.Pattern,
			"patterns": constants.HeaderPatterns,
		})
		if err := s.deps.Store.UpsertSetting(ctx, constants.SETTING_HEADER_PATTERNS, value); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSONSuccess(w, map[string]interface{}{"pattern": *req.Pattern, "active": true})

	case req.Effect != nil:
		value, _ := json.Marshal(map[string]string{"value": *req.Effect})
		if err := s.deps.Store.UpsertSetting(ctx, constants.SETTING_ACTIVE_EFFECT, value); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSONSuccess(w, map[string]interface{}{"effect": *req.Effect, "active": true})

	default:
		writeJSONError(w, http.StatusBadRequest, "Invalid request data")
	}
}

type createThemeRequest struct {
	ThemeData *struct {
		Name            string `json:"name" validate:"required,max=100"`
		BackgroundValue string `json:"background_value" validate:"required"`
	} `json:"theme_data" validate:"required"`
}

func (s *server) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req createThemeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	theme := models.Theme{
		Name:            strings.TrimSpace(req.ThemeData.Name),
		BackgroundValue: req.ThemeData.BackgroundValue,
	}
	if err := s.deps.Store.CreateTheme(r.Context(), &theme); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]interface{}{"message": "Theme created successfully", "theme": theme})
}
