package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"taskflow/internal/api"
	"taskflow/internal/auth"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/testutil"
)

type cli struct {
	url        string
	configPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	gin.SetMode(gin.TestMode)
	for _, k := range []string{"TASKFLOW_API_URL", "TASKFLOW_TOKEN", "TASKFLOW_TIMEOUT", "TASKFLOW_OUTPUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	srv := httptest.NewServer(api.NewRouter(api.Deps{DB: testutil.NewDB(t), Logger: logger.Discard()}))
	t.Cleanup(srv.Close)
	return &cli{url: srv.URL, configPath: filepath.Join(t.TempDir(), "config.yaml")}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--api-url", c.url, "--config", c.configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	if err != nil {
		t.Fatalf("taskflow %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCategoryAndTaskFlow(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun(t, "categories", "add", "Work", "--color", "green"); !strings.Contains(out, `Created category #1 "Work"`) {
		t.Fatalf("add category output = %q", out)
	}
	_, err := c.run(t, "categories", "add", "Work")
	if err == nil || err.Error() != "Failed to create category: Category with this name already exists" {
		t.Fatalf("duplicate err = %v", err)
	}

	if out := c.mustRun(t, "tasks", "add", "-c", "1", "Write", "report"); !strings.Contains(out, `Created task #1 "Write report"`) {
		t.Fatalf("add task output = %q", out)
	}
	_, err = c.run(t, "tasks", "add", "-c", "999", "Orphan")
	if err == nil || !strings.Contains(err.Error(), "Category not found") {
		t.Fatalf("orphan err = %v", err)
	}

	if out := c.mustRun(t, "tasks", "done", "1"); !strings.Contains(out, "Task #1 is now completed") {
		t.Fatalf("done output = %q", out)
	}

	out := c.mustRun(t, "tasks", "list", "-o", "json")
	var tasks []model.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(tasks) != 1 || !tasks[0].Completed || tasks[0].Category == nil || tasks[0].Category.Name != "Work" {
		t.Fatalf("tasks = %+v", tasks)
	}

	if out := c.mustRun(t, "tasks", "list", "--open"); strings.Contains(out, "Write report") {
		t.Fatalf("--open listed a completed task: %q", out)
	}

	out = c.mustRun(t, "categories", "list")
	if !strings.Contains(out, "Work") || !strings.Contains(out, "green") {
		t.Fatalf("categories table = %q", out)
	}

	out = c.mustRun(t, "stats")
	if !strings.Contains(out, "Tasks:") || !strings.Contains(out, "Write report") {
		t.Fatalf("stats table = %q", out)
	}

	c.mustRun(t, "tasks", "rm", "1")
	_, err = c.run(t, "tasks", "rm", "1")
	if err == nil || err.Error() != "Failed to delete task: Task not found" {
		t.Fatalf("second rm err = %v", err)
	}
}

func TestShowHealthAndCompletionRate(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun(t, "stats"); strings.Contains(out, "%") {
		t.Fatalf("empty stats printed a rate: %q", out)
	}

	c.mustRun(t, "categories", "add", "Home")
	c.mustRun(t, "tasks", "add", "-c", "1", "-d", "two litres", "Buy", "milk")
	c.mustRun(t, "tasks", "add", "-c", "1", "Water", "plants")
	c.mustRun(t, "tasks", "add", "-c", "1", "Call", "mum")
	c.mustRun(t, "tasks", "done", "2")

	out := c.mustRun(t, "tasks", "show", "1")
	for _, want := range []string{"Buy milk", "[ ]", "Home", "two litres"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output %q lacks %q", out, want)
		}
	}
	var task model.Task
	if err := json.Unmarshal([]byte(c.mustRun(t, "tasks", "show", "2", "-o", "json")), &task); err != nil || !task.Completed {
		t.Fatalf("show json = %+v, %v", task, err)
	}
	if _, err := c.run(t, "tasks", "show", "99"); err == nil || err.Error() != "Failed to load task: Task not found" {
		t.Fatalf("missing task err = %v", err)
	}

	if out := c.mustRun(t, "stats"); !strings.Contains(out, "1 (33%)") {
		t.Fatalf("stats table = %q", out)
	}

	if out := c.mustRun(t, "health"); out != c.url+" is healthy\n" {
		t.Fatalf("health = %q", out)
	}
	if _, err := c.run(t, "--api-url", "http://127.0.0.1:1", "health"); err == nil || !strings.Contains(err.Error(), "is unhealthy") {
		t.Fatalf("unreachable health err = %v", err)
	}
}

func TestTasksUpdateNeedsFields(t *testing.T) {
	c := newCLI(t)
	if _, err := c.run(t, "tasks", "update", "1"); err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("err = %v", err)
	}
	if _, err := c.run(t, "tasks", "rm", "abc"); err == nil || !strings.Contains(err.Error(), "invalid id") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	c := newCLI(t)
	if _, err := c.run(t, "categories", "list", "-o", "xml"); err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigInitAndToken(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun(t, "config", "init"); !strings.Contains(out, c.configPath) {
		t.Fatalf("init output = %q", out)
	}
	if _, err := c.run(t, "config", "init"); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}

	token := strings.TrimSpace(c.mustRun(t, "token", "--secret", "s3cret", "--save"))
	signer, _ := auth.NewSigner("s3cret")
	if sub, err := signer.Parse(token); err != nil || sub != "cli" {
		t.Fatalf("token subject = %q, %v", sub, err)
	}

	cfg, err := config.LoadClient(c.configPath)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Token != token || cfg.APIURL != c.url {
		t.Fatalf("saved config = %+v", cfg)
	}
}

func TestResolveColor(t *testing.T) {
	cases := map[string]string{
		"green":                     "bg-green-100 text-green-800",
		"Red":                       "bg-red-100 text-red-800",
		"bg-blue-100 text-blue-800": "bg-blue-100 text-blue-800",
		"pink":                      "pink",
	}
	for in, want := range cases {
		if got := resolveColor(in); got != want {
			t.Errorf("resolveColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	if out := c.mustRun(t, "version"); out != "taskflow dev\n" {
		t.Fatalf("version = %q", out)
	}
}
