package handlers

import (
	"strconv"

	"taskapp/internal/middleware"
	"taskapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks. All routes act on the
// authenticated user's tasks only.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// RegisterRoutes registers the task routes behind auth.
func (h *TaskHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	tasks := router.Group("/tasks", auth)
	tasks.Post("/", h.HandleCreateTask)
	tasks.Get("/", h.HandleListTasks)
	tasks.Get("/:id", h.HandleGetTask)
	tasks.Patch("/:id", h.HandleUpdateTask)
	tasks.Delete("/:id", h.HandleDeleteTask)
}

type createTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// HandleCreateTask creates a task owned by the caller.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.service.CreateTask(c.UserContext(), middleware.CurrentUser(c).ID, req.Description, req.Completed)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// HandleListTasks lists the caller's tasks. X-Total-Count carries the
// unfiltered number of tasks the caller owns.
//
//	GET /tasks?completed=true&sort=created_at_desc&limit=10&skip=20
func (h *TaskHandler) HandleListTasks(c *fiber.Ctx) error {
	opts := services.TaskListOptions{Sort: c.Query("sort")}
	if completed := c.Query("completed"); completed != "" {
		v := completed == "true"
		opts.Completed = &v
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = limit
	}
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil {
		opts.Skip = skip
	}

	ownerID := middleware.CurrentUser(c).ID
	tasks, err := h.service.ListTasks(c.UserContext(), ownerID, opts)
	if err != nil {
		return writeError(c, err)
	}
	total, err := h.service.CountTasks(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(tasks)
}

// HandleGetTask returns one of the caller's tasks.
func (h *TaskHandler) HandleGetTask(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}

// HandleUpdateTask applies a partial update limited to description and
// completed.
func (h *TaskHandler) HandleUpdateTask(c *fiber.Ctx) error {
	patch, err := parsePatch(c.Body(), "description", "completed")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var update services.TaskUpdate
	if update.Description, err = patchField[string](patch, "description"); err != nil {
		return badRequest(c, err.Error())
	}
	if update.Completed, err = patchField[bool](patch, "completed"); err != nil {
		return badRequest(c, err.Error())
	}

	task, err := h.service.UpdateTask(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), update)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}

// HandleDeleteTask deletes one of the caller's tasks and returns it.
func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	task, err := h.service.DeleteTask(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}
