package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/notifications"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env        *apiTestEnv
	ownerToken string
	owner      dto.UserDTO
	otherToken string
	project    dto.ProjectDTO
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupAPITestEnv(suite.T())
	suite.ownerToken, suite.owner = suite.env.signup("owner")
	suite.otherToken, _ = suite.env.signup("other")
	suite.project = suite.env.createProject(suite.ownerToken, "Website")
}

func (suite *TaskHandlerTestSuite) listTasks(query string) []dto.TaskDTO {
	w := suite.env.do(http.MethodGet, "/tasks/"+query, suite.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return decode[[]dto.TaskDTO](suite.T(), w)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_FullResponse() {
	task := suite.env.createTask(suite.ownerToken, map[string]any{
		"title":       "Launch",
		"project_id":  suite.project.ID,
		"description": "ship it",
		"priority":    "high",
		"due_date":    "2026-03-01",
		"assigned_to": suite.owner.ID,
	})

	suite.Equal("Launch", task.Title)
	suite.Equal("todo", string(task.Status))
	suite.Equal("high", string(task.Priority))
	suite.Require().NotNil(task.DueDate)
	suite.Equal("2026-03-01", *task.DueDate)
	suite.Require().NotNil(task.Project)
	suite.Equal(dto.ProjectRefDTO{ID: suite.project.ID, Name: "Website"}, *task.Project)
	suite.Require().NotNil(task.AssignedUser)
	suite.Equal(suite.owner, *task.AssignedUser)
	suite.Equal([]notifications.Action{notifications.ActionAssigned}, suite.env.notifier.Actions())
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MalformedDueDateIsNull() {
	for _, due := range []any{"not-a-date", "2026-13-45", 12345, true} {
		w := suite.env.do(http.MethodPost, "/tasks/", suite.ownerToken, map[string]any{
			"title":      "Lenient",
			"project_id": suite.project.ID,
			"due_date":   due,
		})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		suite.Contains(w.Body.String(), `"due_date":null`)
		suite.Contains(w.Body.String(), `"assigned_user":null`)
	}
}

func (suite *TaskHandlerTestSuite) TestCreateTask_TrimsStatusAndPriority() {
	task := suite.env.createTask(suite.ownerToken, map[string]any{
		"title":      "Padded",
		"project_id": suite.project.ID,
		"status":     " done",
		"priority":   "high ",
	})

	suite.Equal("done", string(task.Status))
	suite.Equal("high", string(task.Priority))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_WrongTypedFieldKeepsTheRest() {
	w := suite.env.do(http.MethodPost, "/tasks/", suite.ownerToken,
		fmt.Sprintf(`{"title":"T","project_id":%d,"assigned_to":"abc"}`, suite.project.ID))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	task := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("T", task.Title)
	suite.Nil(task.AssignedTo)

	w = suite.env.do(http.MethodPost, "/tasks/", suite.ownerToken, `{"title":"T","project_id":"one"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.JSONEq(`{"error":"'project_id' is required"}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_WrongTypedFieldIsIgnored() {
	task := suite.env.createTask(suite.ownerToken, map[string]any{"title": "keep", "project_id": suite.project.ID})

	w := suite.env.do(http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID), suite.ownerToken, `{"title":5,"status":"done"}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("keep", updated.Title)
	suite.Equal("done", string(updated.Status))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Validation() {
	otherProject := suite.env.createProject(suite.otherToken, "Theirs")

	tests := []struct {
		name   string
		body   any
		status int
		error  string
	}{
		{name: "title", body: map[string]any{"project_id": suite.project.ID}, status: http.StatusBadRequest, error: "'title' is required"},
		{name: "malformed body", body: `{"title":`, status: http.StatusBadRequest, error: "'title' is required"},
		{name: "project", body: map[string]any{"title": "x"}, status: http.StatusBadRequest, error: "'project_id' is required"},
		{name: "foreign project", body: map[string]any{"title": "x", "project_id": otherProject.ID}, status: http.StatusNotFound, error: "Not found"},
		{name: "status", body: map[string]any{"title": "x", "project_id": suite.project.ID, "status": "blocked"}, status: http.StatusBadRequest, error: "Invalid status"},
		{name: "priority", body: map[string]any{"title": "x", "project_id": suite.project.ID, "priority": "urgent"}, status: http.StatusBadRequest, error: "Invalid priority"},
		{name: "assignee", body: map[string]any{"title": "x", "project_id": suite.project.ID, "assigned_to": 9999}, status: http.StatusBadRequest, error: "assigned_to not found"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.env.do(http.MethodPost, "/tasks/", suite.ownerToken, tt.body)
			suite.Equal(tt.status, w.Code)
			suite.JSONEq(fmt.Sprintf(`{"error":%q}`, tt.error), w.Body.String())
		})
	}
}

func (suite *TaskHandlerTestSuite) TestListTasks_PaginationCoversEveryTaskOnce() {
	for i := 0; i < 5; i++ {
		suite.env.createTask(suite.ownerToken, map[string]any{
			"title":      fmt.Sprintf("task %d", i),
			"project_id": suite.project.ID,
		})
	}

	seen := map[uint64]bool{}
	var sizes []int
	for page := 1; page <= 3; page++ {
		tasks := suite.listTasks(fmt.Sprintf("?page=%d&page_size=2", page))
		sizes = append(sizes, len(tasks))
		for _, t := range tasks {
			suite.False(seen[t.ID], "task %d returned twice", t.ID)
			seen[t.ID] = true
		}
	}

	suite.Equal([]int{2, 2, 1}, sizes)
	suite.Len(seen, 5)
}

func (suite *TaskHandlerTestSuite) TestListTasks_PaginationClamping() {
	for i := 0; i < 3; i++ {
		suite.env.createTask(suite.ownerToken, map[string]any{"title": "t", "project_id": suite.project.ID})
	}

	suite.Len(suite.listTasks("?page=0&page_size=2"), 2)
	suite.Len(suite.listTasks("?page=abc&page_size=0"), 1)
	suite.Len(suite.listTasks("?page_size=abc"), 3)
	suite.Len(suite.listTasks("?page_size=1000"), 3)
}

func (suite *TaskHandlerTestSuite) TestListTasks_DueDateSortPutsNullFirst() {
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "late", "project_id": suite.project.ID, "due_date": "2026-05-01"})
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "none", "project_id": suite.project.ID})
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "early", "project_id": suite.project.ID, "due_date": "2026-01-01"})

	tasks := suite.listTasks("?sort=due_date")
	suite.Require().Len(tasks, 3)
	suite.Equal("none", tasks[0].Title)
	suite.Nil(tasks[0].DueDate)
	suite.Equal("early", tasks[1].Title)
	suite.Equal("late", tasks[2].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_PrioritySortIsLexical() {
	for _, p := range []string{"low", "high", "medium"} {
		suite.env.createTask(suite.ownerToken, map[string]any{"title": p, "project_id": suite.project.ID, "priority": p})
	}

	tasks := suite.listTasks("?sort=priority")
	suite.Require().Len(tasks, 3)
	suite.Equal("medium", string(tasks[0].Priority))
	suite.Equal("low", string(tasks[1].Priority))
	suite.Equal("high", string(tasks[2].Priority))
}

func (suite *TaskHandlerTestSuite) TestListTasks_Filters() {
	second := suite.env.createProject(suite.ownerToken, "Second")
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "a", "project_id": suite.project.ID, "status": "done", "due_date": "2026-02-02"})
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "b", "project_id": suite.project.ID, "priority": "low"})
	suite.env.createTask(suite.ownerToken, map[string]any{"title": "c", "project_id": second.ID})
	suite.env.createTask(suite.otherToken, map[string]any{"title": "x", "project_id": suite.env.createProject(suite.otherToken, "Other").ID})

	suite.Len(suite.listTasks(""), 3)
	suite.Len(suite.listTasks("?status=done"), 1)
	suite.Len(suite.listTasks("?priority=low"), 1)
	suite.Len(suite.listTasks("?status=done&priority=low"), 0)
	suite.Len(suite.listTasks(fmt.Sprintf("?project_id=%d", second.ID)), 1)
	suite.Len(suite.listTasks("?due_date=2026-02-02"), 1)

	// Unparseable filters are ignored.
	suite.Len(suite.listTasks("?project_id=abc"), 3)
	suite.Len(suite.listTasks("?due_date=yesterday"), 3)
}

func (suite *TaskHandlerTestSuite) TestGetUpdateDelete_OwnershipIsolation() {
	task := suite.env.createTask(suite.ownerToken, map[string]any{"title": "private", "project_id": suite.project.ID})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		w := suite.env.do(method, path, suite.otherToken, map[string]any{"title": "mine"})
		suite.Equal(http.StatusNotFound, w.Code, method)
		suite.JSONEq(`{"error":"Not found"}`, w.Body.String())
	}

	w := suite.env.do(http.MethodGet, path, suite.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("private", decode[dto.TaskDTO](suite.T(), w).Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	other := suite.env.createProject(suite.ownerToken, "Other")
	task := suite.env.createTask(suite.ownerToken, map[string]any{"title": "draft", "project_id": suite.project.ID, "due_date": "2026-04-04"})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	w := suite.env.do(http.MethodPatch, path, suite.ownerToken, map[string]any{
		"status":      "in_progress",
		"project_id":  other.ID,
		"assigned_to": suite.owner.ID,
		"due_date":    "garbage",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("in_progress", string(updated.Status))
	suite.Equal(suite.project.ID, updated.ProjectID)
	suite.Nil(updated.DueDate)
	suite.Equal("draft", updated.Title)
	suite.Equal([]notifications.Action{
		notifications.ActionAssigned,
		notifications.ActionStatusChanged,
	}, suite.env.notifier.Actions())

	w = suite.env.do(http.MethodPatch, path, suite.ownerToken, map[string]any{"title": "  "})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.JSONEq(`{"error":"'title' cannot be empty"}`, w.Body.String())

	w = suite.env.do(http.MethodPatch, path, suite.ownerToken, map[string]any{"status": nil})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.JSONEq(`{"error":"Invalid status"}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.env.createTask(suite.ownerToken, map[string]any{"title": "bye", "project_id": suite.project.ID})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	w := suite.env.do(http.MethodDelete, path, suite.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"Deleted"}`, w.Body.String())

	w = suite.env.do(http.MethodGet, path, suite.ownerToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.env.do(http.MethodGet, fmt.Sprintf("/projects/%d", suite.project.ID), suite.ownerToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
