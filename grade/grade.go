// Package grade submits answers to course exercises for automated checking.
package grade

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultURL is the grading endpoint.
	DefaultURL = "https://australia-southeast1-wald-1526877012527.cloudfunctions.net/dea-live-grades"

	// UserEnvVar is the environment variable holding the submitting user.
	UserEnvVar = "JUPYTERHUB_USER"

	// AnonymousUser is the user when UserEnvVar is unset or empty.
	AnonymousUser = "anonymous"
)

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dea_answer_submissions_total",
		Help: "The total number of answers submitted, by HTTP status code",
	}, []string{"code"})
	submissionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dea_answer_submission_errors_total",
		Help: "The total number of answers that could not be submitted",
	})
)

// A Submission is the body posted to the grader.
type Submission struct {
	UID     string `json:"uid"`
	User    string `json:"user"`
	Message any    `json:"message"`
}

// A Client submits answers to a grader.
type Client struct {
	url        string
	httpClient *http.Client
	user       string
	logger     logrus.FieldLogger
}

// A ClientOption sets an option on a Client.
type ClientOption func(*Client)

// NewClient returns a new Client with the given options.
func NewClient(options ...ClientOption) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := &Client{
		url:        DefaultURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithURL sets the grader URL.
func WithURL(url string) ClientOption {
	return func(c *Client) {
		c.url = url
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUser sets the submitting user, overriding UserEnvVar.
func WithUser(user string) ClientOption {
	return func(c *Client) {
		c.user = user
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// User returns the user that c submits answers as.
func (c *Client) User() string {
	if c.user != "" {
		return c.user
	}
	if user := os.Getenv(UserEnvVar); user != "" {
		return user
	}
	return AnonymousUser
}

// NewSubmission returns the submission of ans to the question uid.
func (c *Client) NewSubmission(uid string, ans any) *Submission {
	return &Submission{
		UID:     uid,
		User:    c.User(),
		Message: Normalize(ans),
	}
}

// Check posts ans as the answer to the question uid and returns the
// grader's response body. The response status is not checked.
func (c *Client) Check(ctx context.Context, uid string, ans any) (string, error) {
	body, err := c.check(ctx, c.NewSubmission(uid, ans))
	if err != nil {
		submissionErrors.Inc()
		return "", err
	}
	return body, nil
}

func (c *Client) check(ctx context.Context, submission *Submission) (string, error) {
	data, err := json.Marshal(submission)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	submissions.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.WithFields(logrus.Fields{
		"uid":    submission.UID,
		"user":   submission.User,
		"status": resp.StatusCode,
	}).Debug("submitted answer")

	return string(body), nil
}

var defaultClient = NewClient()

// CheckAnswer posts ans as the answer to the question uid using the default
// grader and returns its response body.
func CheckAnswer(ctx context.Context, uid string, ans any) (string, error) {
	return defaultClient.Check(ctx, uid, ans)
}
