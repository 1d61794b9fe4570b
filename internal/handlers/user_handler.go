package handlers

import (
	"errors"

	"taskapp/internal/middleware"
	"taskapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user accounts and avatars.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes. auth guards every route except
// registration, login and public avatar retrieval.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Post("/logout", auth, h.HandleLogout)
	users.Post("/logoutAll", auth, h.HandleLogoutAll)

	users.Get("/me", auth, h.HandleGetMe)
	users.Patch("/me", auth, h.HandleUpdateMe)
	users.Delete("/me", auth, h.HandleDeleteMe)

	users.Post("/me/avatar", auth, h.HandleUploadAvatar)
	users.Delete("/me/avatar", auth, h.HandleDeleteAvatar)
	users.Get("/me/:id/avatar", h.HandleGetAvatar)

	users.Get("/:id", auth, h.HandleGetUser)
}

// HandleRegister creates an account and returns it with a session token.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, token, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin opens a new session for valid credentials.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, token, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuth) {
			log.Debug().Err(err).Str("email", req.Email).Msg("login failed")
			return badRequest(c, "Unable to login")
		}
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// HandleLogout revokes the token used for this request.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), middleware.CurrentUser(c), middleware.CurrentToken(c)); err != nil {
		log.Error().Err(err).Msg("logout failed")
		return badRequest(c, "Logout failed")
	}
	return c.SendString("Successfully Logged Out")
}

// HandleLogoutAll revokes every session of the caller.
func (h *UserHandler) HandleLogoutAll(c *fiber.Ctx) error {
	if err := h.service.LogoutAll(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		log.Error().Err(err).Msg("global logout failed")
		return badRequest(c, "Logout failed")
	}
	return c.SendString("Global logout successful")
}

// HandleGetMe returns the caller's profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// HandleGetUser returns another user's public profile.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// HandleUpdateMe applies a partial update limited to name, email, password
// and age.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	patch, err := parsePatch(c.Body(), "name", "email", "password", "age")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var update services.ProfileUpdate
	if update.Name, err = patchField[string](patch, "name"); err != nil {
		return badRequest(c, err.Error())
	}
	if update.Email, err = patchField[string](patch, "email"); err != nil {
		return badRequest(c, err.Error())
	}
	if update.Password, err = patchField[string](patch, "password"); err != nil {
		return badRequest(c, err.Error())
	}
	if update.Age, err = patchField[int](patch, "age"); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.service.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), update)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// HandleDeleteMe removes the caller's account and all of its tasks.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.service.Delete(c.UserContext(), user); err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// HandleUploadAvatar stores the multipart "avatar" file as a 250x250 PNG.
func (h *UserHandler) HandleUploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return badRequest(c, "Please upload an avatar file")
	}
	file, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer file.Close()

	if err := h.service.UploadAvatar(c.UserContext(), middleware.CurrentUser(c), fh.Filename, fh.Size, file); err != nil {
		return writeError(c, err)
	}
	return c.SendString("Avatar upload successful")
}

// HandleDeleteAvatar clears the caller's avatar.
func (h *UserHandler) HandleDeleteAvatar(c *fiber.Ctx) error {
	if err := h.service.ClearAvatar(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendString("Avatar Deleted")
}

// HandleGetAvatar serves a user's avatar without authentication.
func (h *UserHandler) HandleGetAvatar(c *fiber.Ctx) error {
	data, err := h.service.GetAvatar(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}
