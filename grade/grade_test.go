package grade_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"

	"github.com/ANU-WALD/dea-course/grade"
)

type testSubmission struct {
	method      string
	contentType string
	body        map[string]any
}

type testGrader struct {
	status      int
	response    string
	mutex       sync.Mutex
	submissions []testSubmission
}

func newTestGrader(t *testing.T, status int, response string) (*testGrader, *httptest.Server) {
	t.Helper()
	g := &testGrader{
		status:   status,
		response: response,
	}
	server := httptest.NewServer(g)
	t.Cleanup(server.Close)
	return g, server
}

func (g *testGrader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g.mutex.Lock()
	g.submissions = append(g.submissions, testSubmission{
		method:      r.Method,
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	})
	g.mutex.Unlock()
	w.WriteHeader(g.status)
	_, _ = w.Write([]byte(g.response))
}

func (g *testGrader) Submissions() []testSubmission {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return slices.Clone(g.submissions)
}

func TestClientCheck(t *testing.T) {
	for _, tc := range []struct {
		name            string
		env             string
		unsetEnv        bool
		options         []grade.ClientOption
		uid             string
		ans             any
		status          int
		response        string
		expectedUser    string
		expectedMessage any
	}{
		{
			name:            "anonymous",
			uid:             "q1",
			ans:             5,
			status:          http.StatusOK,
			response:        "Correct!",
			expectedUser:    "anonymous",
			expectedMessage: 5.0,
		},
		{
			name:            "unset_jupyterhub_user",
			unsetEnv:        true,
			uid:             "q1",
			ans:             int16(-3),
			status:          http.StatusOK,
			response:        "Correct!",
			expectedUser:    "anonymous",
			expectedMessage: -3.0,
		},
		{
			name:            "jupyterhub_user",
			env:             "student42",
			uid:             "q2",
			ans:             []int16{1, 2, 3},
			status:          http.StatusOK,
			response:        "Try again",
			expectedUser:    "student42",
			expectedMessage: []any{1.0, 2.0, 3.0},
		},
		{
			name:            "explicit_user",
			env:             "student42",
			options:         []grade.ClientOption{grade.WithUser("tutor")},
			uid:             "q3",
			ans:             make([]float64, 100),
			status:          http.StatusOK,
			response:        "Too large",
			expectedUser:    "tutor",
			expectedMessage: -1.0,
		},
		{
			name:            "error_status",
			uid:             "q4",
			ans:             grade.Tuple{"a", true},
			status:          http.StatusInternalServerError,
			response:        "internal error",
			expectedUser:    "anonymous",
			expectedMessage: []any{"a", true},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(grade.UserEnvVar, tc.env)
			if tc.unsetEnv {
				assert.NoError(t, os.Unsetenv(grade.UserEnvVar))
			}
			grader, server := newTestGrader(t, tc.status, tc.response)
			client := grade.NewClient(append([]grade.ClientOption{
				grade.WithURL(server.URL),
				grade.WithHTTPClient(server.Client()),
				grade.WithLogger(logrus.New()),
			}, tc.options...)...)

			actual, err := client.Check(t.Context(), tc.uid, tc.ans)
			assert.NoError(t, err)
			assert.Equal(t, tc.response, actual)
			assert.Equal(t, []testSubmission{
				{
					method:      http.MethodPost,
					contentType: "application/json",
					body: map[string]any{
						"uid":     tc.uid,
						"user":    tc.expectedUser,
						"message": tc.expectedMessage,
					},
				},
			}, grader.Submissions())
		})
	}
}

func TestClientUser(t *testing.T) {
	t.Setenv(grade.UserEnvVar, "")
	assert.Equal(t, grade.AnonymousUser, grade.NewClient().User())
	assert.NoError(t, os.Unsetenv(grade.UserEnvVar))
	assert.Equal(t, grade.AnonymousUser, grade.NewClient().User())
	t.Setenv(grade.UserEnvVar, "student7")
	assert.Equal(t, "student7", grade.NewClient().User())
	assert.Equal(t, "tutor", grade.NewClient(grade.WithUser("tutor")).User())
}

func TestNewSubmission(t *testing.T) {
	t.Setenv(grade.UserEnvVar, "")
	assert.Equal(t, &grade.Submission{
		UID:     "q1",
		User:    "anonymous",
		Message: int64(5),
	}, grade.NewClient().NewSubmission("q1", 5))
}

func TestClientCheckErrors(t *testing.T) {
	t.Run("unsupported_value", func(t *testing.T) {
		_, server := newTestGrader(t, http.StatusOK, "")
		client := grade.NewClient(grade.WithURL(server.URL))
		_, err := client.Check(t.Context(), "q1", make(chan int))
		assert.Error(t, err)
	})

	t.Run("connection_refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()
		_, err := grade.NewClient(grade.WithURL(url)).Check(t.Context(), "q1", 1)
		assert.Error(t, err)
	})
}
