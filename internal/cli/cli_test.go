package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

type apiLog struct {
	mu    sync.Mutex
	calls []string
	puts  []model.Task
}

func (l *apiLog) add(s string) {
	l.mu.Lock()
	l.calls = append(l.calls, s)
	l.mu.Unlock()
}

func newAPI(t *testing.T) (*httptest.Server, *apiLog) {
	t.Helper()
	log := &apiLog{}
	tasks := []model.Task{
		{ID: 1, Title: "delectus aut autem"},
		{ID: 2, Title: "quis ut nam facilis", Completed: true},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		log.add("GET " + r.URL.RequestURI())
		var out []model.Task
		for _, task := range tasks {
			switch r.URL.Query().Get("completed") {
			case "true":
				if !task.Completed {
					continue
				}
			case "false":
				if task.Completed {
					continue
				}
			}
			out = append(out, task)
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /todos", func(w http.ResponseWriter, r *http.Request) {
		log.add("POST /todos")
		var in model.Task
		_ = json.NewDecoder(r.Body).Decode(&in)
		in.ID = 201
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})
	mux.HandleFunc("PUT /todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		log.add("PUT " + r.URL.Path)
		var in model.Task
		_ = json.NewDecoder(r.Body).Decode(&in)
		log.mu.Lock()
		log.puts = append(log.puts, in)
		log.mu.Unlock()
		_ = json.NewEncoder(w).Encode(in)
	})
	mux.HandleFunc("DELETE /todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		log.add("DELETE " + r.URL.Path)
		if r.PathValue("id") == "404" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("{}"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, log
}

func run(t *testing.T, base string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TASKTRACKER_TOKEN", "")
	t.Setenv("TASKTRACKER_BASE_URL", "")
	var stdout, stderr bytes.Buffer
	full := append([]string{"--theme", "mono"}, args...)
	if base != "" {
		full = append([]string{"--base-url", base}, full...)
	}
	code := Execute(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestList(t *testing.T) {
	srv, log := newAPI(t)
	code, out, errOut := run(t, srv.URL, "ls")
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errOut)
	}
	for _, want := range []string{"delectus aut autem", "quis ut nam facilis", "#1", "[x]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(log.calls) != 1 || log.calls[0] != "GET /todos" {
		t.Errorf("calls: %v", log.calls)
	}
}

func TestList_Filters(t *testing.T) {
	srv, log := newAPI(t)
	code, out, _ := run(t, srv.URL, "ls", "--pending")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.Contains(out, "quis ut nam facilis") || !strings.Contains(out, "filter: not completed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if log.calls[0] != "GET /todos?completed=false" {
		t.Errorf("calls: %v", log.calls)
	}

	calls := len(log.calls)
	code, _, errOut := run(t, srv.URL, "ls", "--completed", "--pending")
	if code != 2 || !strings.Contains(errOut, "cannot be used together") {
		t.Errorf("conflicting filters: exit %d, stderr %q", code, errOut)
	}
	if len(log.calls) != calls {
		t.Errorf("conflicting filters reached the API: %v", log.calls[calls:])
	}
}

func TestList_FetchFailureLogsToStderr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	code, _, errOut := run(t, srv.URL, "--debug", "ls")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	for _, want := range []string{"fetch tasks", "500", "boom"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}
}

func TestList_WritesNoLogFile(t *testing.T) {
	srv, _ := newAPI(t)
	logFile := filepath.Join(t.TempDir(), "tasktracker.log")
	if code, _, errOut := run(t, srv.URL, "--log-file", logFile, "ls"); code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errOut)
	}
	if _, err := os.Stat(logFile); !os.IsNotExist(err) {
		t.Errorf("log file created by ls: %v", err)
	}
}

func TestUsageHint(t *testing.T) {
	code, _, errOut := run(t, "", "frobnicate")
	if code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
	if !strings.Contains(errOut, "Hint: run `tasktracker --help` for usage") {
		t.Errorf("stderr %q", errOut)
	}
}

func TestColorFlag(t *testing.T) {
	srv, _ := newAPI(t)
	if code, _, errOut := run(t, srv.URL, "--color", "never", "ls"); code != 0 {
		t.Errorf("--color never: exit %d, stderr=%s", code, errOut)
	}
	if code, _, errOut := run(t, srv.URL, "--color", "sometimes", "ls"); code != 2 || !strings.Contains(errOut, "--color") {
		t.Errorf("--color sometimes: exit %d, stderr %q", code, errOut)
	}
}

func TestAdd(t *testing.T) {
	srv, log := newAPI(t)
	code, out, errOut := run(t, srv.URL, "add", "Buy", "milk")
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errOut)
	}
	if !strings.Contains(out, "added #201") {
		t.Errorf("output: %q", out)
	}
	if len(log.calls) != 1 || log.calls[0] != "POST /todos" {
		t.Errorf("calls: %v", log.calls)
	}
}

func TestEdit_SendsCompletedFalse(t *testing.T) {
	srv, log := newAPI(t)
	code, _, errOut := run(t, srv.URL, "edit", "2", "new", "title")
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errOut)
	}
	if len(log.puts) != 1 || log.puts[0] != (model.Task{Title: "new title"}) {
		t.Errorf("puts: %+v", log.puts)
	}
	if log.calls[0] != "PUT /todos/2" {
		t.Errorf("calls: %v", log.calls)
	}
}

func TestRemove(t *testing.T) {
	srv, _ := newAPI(t)
	if code, out, _ := run(t, srv.URL, "rm", "1"); code != 0 || !strings.Contains(out, "removed #1") {
		t.Errorf("rm 1: exit %d, out %q", code, out)
	}
	if code, _, errOut := run(t, srv.URL, "rm", "404"); code != 1 || !strings.Contains(errOut, "404") {
		t.Errorf("rm 404: exit %d, stderr %q", code, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	srv, log := newAPI(t)
	tests := []struct {
		name string
		args []string
	}{
		{"rm without id", []string{"rm"}},
		{"rm bad id", []string{"rm", "abc"}},
		{"add without title", []string{"add"}},
		{"edit without title", []string{"edit", "1"}},
		{"unknown command", []string{"frobnicate"}},
		{"bad flag", []string{"ls", "--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := run(t, srv.URL, tt.args...)
			if code != 2 {
				t.Errorf("exit %d, want 2", code)
			}
		})
	}
	if len(log.calls) != 0 {
		t.Errorf("usage errors reached the API: %v", log.calls)
	}
}

func TestBadConfig(t *testing.T) {
	code, _, errOut := run(t, "ftp://nope", "ls")
	if code != 2 || !strings.Contains(errOut, "config") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestAuthStatus(t *testing.T) {
	code, out, _ := run(t, "", "auth", "status")
	if code != 0 || !strings.Contains(out, "not logged in") {
		t.Errorf("exit %d, out %q", code, out)
	}
}

func TestCredentials_FollowXDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	store, err := (&App{}).credentials()
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if want := filepath.Join(xdg, "tasktracker"); store.Dir != want {
		t.Errorf("dir %q, want %q", store.Dir, want)
	}
}
