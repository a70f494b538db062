// Package seeder fills a running twitter-like service with demo data by
// replaying a Plan of register, login, tweet and subscribe calls.
//
// Calls are issued strictly in order and their results are never used to
// decide what happens next: a failed register, login or post is recorded as
// an Outcome and the run carries on with the next call. Nothing is retried.
package seeder

import (
	"context"
	"errors"
	"net/http"

	"github.com/raysh454/tweetseed/internal/logging"
	"github.com/raysh454/tweetseed/internal/model"
	"github.com/raysh454/tweetseed/internal/utils"
	"github.com/raysh454/tweetseed/internal/webclient"
)

const (
	PathRegister  = "/register"
	PathLogin     = "/login"
	PathTweets    = "/tweets"
	PathSubscribe = "/subscribe"
)

type Op string

const (
	OpRegister  Op = "register"
	OpLogin     Op = "login"
	OpTweet     Op = "tweet"
	OpSubscribe Op = "subscribe"
)

// Outcome describes one issued call. StatusCode is 0 when the call never got
// a response.
type Outcome struct {
	Op         Op
	URL        string
	User       string
	StatusCode int
	Err        error
}

// Observer receives every Outcome as soon as the call returns.
type Observer func(Outcome)

type Seeder struct {
	client  webclient.WebClient
	base    *utils.URLTools
	logger  logging.Logger
	observe Observer
}

type Option func(*Seeder)

// WithObserver installs fn to receive call outcomes.
func WithObserver(fn Observer) Option {
	return func(s *Seeder) {
		s.observe = fn
	}
}

func New(client webclient.WebClient, baseURL string, logger logging.Logger, opts ...Option) (*Seeder, error) {
	if client == nil {
		return nil, errors.New("seeder: nil webclient provided")
	}
	if logger == nil {
		return nil, errors.New("seeder: nil logger provided")
	}
	base, err := utils.NewURLTools(baseURL)
	if err != nil {
		return nil, err
	}
	s := &Seeder{
		client: client,
		base:   base,
		logger: logger.With(logging.Field{Key: "component", Value: "seeder"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the normalized address calls are sent to.
func (s *Seeder) BaseURL() string {
	return s.base.String()
}

// Run validates plan, then registers every user and runs every step. Only an
// invalid plan is reported; call failures never stop the run.
func (s *Seeder) Run(ctx context.Context, plan Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	s.logger.Debug("seeding started",
		logging.Field{Key: "base_url", Value: s.BaseURL()},
		logging.Field{Key: "users", Value: len(plan.Users)},
		logging.Field{Key: "steps", Value: len(plan.Steps)})

	s.RegisterAll(ctx, plan.Users)

	for _, step := range plan.Steps {
		user, _ := plan.User(step.Login)
		sess := s.Login(ctx, user.Email, user.Password)
		for _, action := range step.Actions {
			switch action.Kind {
			case ActionTweet:
				s.PostTweet(ctx, sess, action.Text)
			case ActionSubscribe:
				s.Subscribe(ctx, sess, action.Text)
			}
		}
	}

	s.logger.Debug("seeding finished")
	return nil
}

// RegisterAll creates each user in order.
func (s *Seeder) RegisterAll(ctx context.Context, users []model.UserRecord) {
	for _, u := range users {
		s.post(ctx, OpRegister, PathRegister, u.Username, nil, u)
	}
}

// Login returns the session handed out for email. The session is empty if the
// login failed; callers use it regardless.
func (s *Seeder) Login(ctx context.Context, email, password string) *webclient.Session {
	sess := webclient.NewSession(email)
	resp := s.post(ctx, OpLogin, PathLogin, email, nil, model.LoginRequest{Email: email, Password: password})
	sess.Capture(resp)
	return sess
}

// PostTweet posts message as the session's user.
func (s *Seeder) PostTweet(ctx context.Context, sess *webclient.Session, message string) {
	s.post(ctx, OpTweet, PathTweets, sess.Owner(), sess, model.TweetPayload{Message: message})
}

// Subscribe makes the session's user follow nickname.
func (s *Seeder) Subscribe(ctx context.Context, sess *webclient.Session, nickname string) {
	s.post(ctx, OpSubscribe, PathSubscribe, sess.Owner(), sess, model.SubscriptionRequest{Nickname: nickname})
}

func (s *Seeder) post(ctx context.Context, op Op, path, user string, sess *webclient.Session, payload any) *webclient.Response {
	url := s.base.Endpoint(path)
	out := Outcome{Op: op, URL: url, User: user}

	req, err := webclient.NewJSONRequest(http.MethodPost, url, payload)
	if err != nil {
		out.Err = err
		s.report(out)
		return nil
	}
	req.Cookies = sess.CookiesFor(url)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		out.Err = err
	} else if resp != nil {
		out.StatusCode = resp.StatusCode
	}
	s.report(out)
	return resp
}

func (s *Seeder) report(out Outcome) {
	fields := []logging.Field{
		{Key: "op", Value: string(out.Op)},
		{Key: "url", Value: out.URL},
		{Key: "user", Value: out.User},
		{Key: "status", Value: out.StatusCode},
	}
	if out.Err != nil {
		fields = append(fields, logging.Field{Key: "error", Value: out.Err})
	}
	s.logger.Debug("call issued", fields...)

	if s.observe != nil {
		s.observe(out)
	}
}
