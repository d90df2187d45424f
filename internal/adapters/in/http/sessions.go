package http

import (
	"net/http"
	"strconv"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// OpenSession handles POST /api/v1/sessions.
func (s *Server) OpenSession(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req OpenSessionRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return s.respondError(c, badRequest("invalid order_id"))
	}
	tab, err := editing.ParseTab(req.Tab)
	if err != nil {
		return s.respondError(c, err)
	}

	session, err := s.sessions.Open(c.Request().Context(), editing.OpenParams{
		OrderID: orderID,
		Actor:   actor,
		Tab:     tab,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// GetSession handles GET /api/v1/sessions/:id.
func (s *Server) GetSession(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// SetSessionTab handles PUT /api/v1/sessions/:id/tab.
func (s *Server) SetSessionTab(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req TabRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	tab, err := editing.ParseTab(req.Tab)
	if err != nil {
		return s.respondError(c, err)
	}
	if err = session.SetTab(tab); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeSessionField handles PUT /api/v1/sessions/:id/fields/:field. The value is
// written by autosave once the field goes quiet.
func (s *Server) ChangeSessionField(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	field, err := order.ParseField(c.Param("field"))
	if err != nil {
		return s.respondError(c, err)
	}
	var req FieldRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	if err = session.OnFieldChange(field, req.Value); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

// AddSessionItem handles POST /api/v1/sessions/:id/items.
func (s *Server) AddSessionItem(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req NewItemRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	item, err := session.AddItem(req.Code, req.Description, req.Requested)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toItemResponse(item))
}

// EditSessionItem handles PATCH /api/v1/sessions/:id/items/:itemId.
func (s *Server) EditSessionItem(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return s.respondError(c, err)
	}
	var req ItemEditRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	field := order.ItemField(req.Field)
	if err = field.Validate(); err != nil {
		return s.respondError(c, err)
	}
	if err = session.EditItem(itemID, field, req.Value); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveSessionItem handles DELETE /api/v1/sessions/:id/items/:itemId.
func (s *Server) RemoveSessionItem(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return s.respondError(c, err)
	}
	if err = session.RemoveItem(itemID); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EditSessionHeader handles PUT /api/v1/sessions/:id/header.
func (s *Server) EditSessionHeader(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req HeaderRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	if req.Priority != nil {
		priority, perr := order.ParsePriority(*req.Priority)
		if perr != nil {
			return s.respondError(c, perr)
		}
		if err = session.SetPriority(priority); err != nil {
			return s.respondError(c, err)
		}
	}
	switch {
	case req.ClearDeadline:
		err = session.SetDeadline(nil)
	case req.Deadline != nil:
		err = session.SetDeadline(req.Deadline)
	}
	if err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SaveSession handles POST /api/v1/sessions/:id/save.
func (s *Server) SaveSession(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := session.Save(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSaveResponse(result))
}

// TransitionSession handles POST /api/v1/sessions/:id/transitions. The session
// actor is used; the X-Actor header is not read.
func (s *Server) TransitionSession(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req TransitionRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	ctx := c.Request().Context()
	if req.Phase != "" {
		phase, perr := order.ParsePhase(req.Phase)
		if perr != nil {
			return s.respondError(c, perr)
		}
		result, terr := session.DropOnPhase(ctx, phase, transitionOptions(req)...)
		if terr != nil {
			return s.respondError(c, terr)
		}
		return c.JSON(http.StatusOK, toTransitionResponse(result))
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := session.TransitionTo(ctx, status, transitionOptions(req)...)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTransitionResponse(result))
}

// ChangeSessionItemStatus handles POST /api/v1/sessions/:id/items/:itemId/status.
func (s *Server) ChangeSessionItemStatus(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.respondError(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return s.respondError(c, err)
	}
	var req ItemStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	status, err := order.ParseItemStatus(req.Status)
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := session.ChangeItemStatus(c.Request().Context(), itemID, status)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toItemStatusResponse(result))
}

// SaveAndCloseSession handles POST /api/v1/sessions/:id/close. Pending field values
// and unsaved items are written before the session closes.
func (s *Server) SaveAndCloseSession(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	if err = s.sessions.SaveAndClose(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CloseSession handles DELETE /api/v1/sessions/:id. Without force=true a session
// with unsaved changes is kept and 409 is returned.
func (s *Server) CloseSession(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	force := false
	if raw := c.QueryParam("force"); raw != "" {
		if force, err = strconv.ParseBool(raw); err != nil {
			return s.respondError(c, badRequest("force must be a boolean"))
		}
	}
	if err = s.sessions.Close(id, force); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) session(c echo.Context) (*editing.Session, error) {
	id, err := uuidParam(c, "id")
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(id)
}
