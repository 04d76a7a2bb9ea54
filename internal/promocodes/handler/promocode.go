package handler

import (
	"encoding/json"
	"net/http"

	"roomly/internal/promocodes/service"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PromoCodeHandler struct {
	service service.PromoCodeService
	log     *logger.Logger
}

func NewPromoCodeHandler(service service.PromoCodeService, log *logger.Logger) *PromoCodeHandler {
	return &PromoCodeHandler{
		service: service,
		log:     log,
	}
}

func (h *PromoCodeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var promo model.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&promo); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &promo); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, promo); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PromoCodeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	promo, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, promo); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PromoCodeHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	promo, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByCode", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, promo); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByCode", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PromoCodeHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	promos, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, promos, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *PromoCodeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PromoCodeUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PromoCodeHandler) Activate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Activate(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Activate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PromoCodeHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Deactivate(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Deactivate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PromoCodeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PromoCodeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/promo-codes", h.Create)
	router.GET("/api/v1/promo-codes", h.GetAll)
	router.GET("/api/v1/promo-codes/id/:id", h.GetByID)
	router.GET("/api/v1/promo-codes/code/:code", h.GetByCode)
	router.PATCH("/api/v1/promo-codes/id/:id", h.Update)
	router.PATCH("/api/v1/promo-codes/id/:id/activate", h.Activate)
	router.PATCH("/api/v1/promo-codes/id/:id/deactivate", h.Deactivate)
	router.DELETE("/api/v1/promo-codes/id/:id", h.Delete)
}
