package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/opsboard/internal/api/metrics"
	"github.com/99minutos/opsboard/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Description  Every user, newest first.
// @Tags         users
// @Produce      json
// @Success      200  {object}  Envelope{data=[]domain.User}
// @Failure      500  {object}  Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, users)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u)
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Replays the first response for a repeated key"
// @Param        body             body      createUserRequest  true   "User fields"
// @Success      201              {object}  Envelope{data=domain.User}
// @Failure      400              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, replayed, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Status:         req.Status,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		return err
	}

	countCreate(metrics.ResourceUsers, replayed)
	return respond(c, http.StatusCreated, u)
}

// Update handles PUT /users/:id.
//
// @Summary      Update a user
// @Description  Partial update: omitted fields keep their value.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u)
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.EntitiesDeletedTotal.WithLabelValues(metrics.ResourceUsers).Inc()
	return respondDeleted(c, "User deleted successfully")
}
