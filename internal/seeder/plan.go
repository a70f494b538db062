package seeder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raysh454/tweetseed/internal/model"
)

type ActionKind string

const (
	ActionTweet     ActionKind = "tweet"
	ActionSubscribe ActionKind = "subscribe"
)

// Action is one call made with a logged-in user's session. Text is the tweet
// message or the nickname to subscribe to.
type Action struct {
	Kind ActionKind `toml:"kind"`
	Text string     `toml:"text"`
}

// Step logs in as the registered user named by Login (a username) and then
// performs Actions in order with that session.
type Step struct {
	Login   string   `toml:"login"`
	Actions []Action `toml:"actions"`
}

// Plan is the full seeding script: every user is registered first, then the
// steps run in order.
type Plan struct {
	Users []model.UserRecord `toml:"users"`
	Steps []Step             `toml:"steps"`
}

var ErrInvalidPlan = errors.New("invalid seed plan")

func Tweet(message string) Action {
	return Action{Kind: ActionTweet, Text: message}
}

func SubscribeTo(nickname string) Action {
	return Action{Kind: ActionSubscribe, Text: nickname}
}

// DefaultPlan returns the demo data set: three users, three tweets and three
// subscriptions.
func DefaultPlan() Plan {
	vadim := model.UserRecord{Email: "vadim@gmail.com", Username: "Vadim", Password: "password_first"}
	dima := model.UserRecord{Email: "dima@mail.ru", Username: "Dima", Password: "password_second"}
	alex := model.UserRecord{Email: "alex@asd.en", Username: "Alex", Password: "password_third"}

	return Plan{
		Users: []model.UserRecord{vadim, dima, alex},
		Steps: []Step{
			{
				Login: vadim.Username,
				Actions: []Action{
					Tweet("Hello, Im Vadim and this is my first tweet"),
					Tweet("My day is greate day (c) Vadim"),
				},
			},
			{
				Login: dima.Username,
				Actions: []Action{
					Tweet("Im a bad boy (c) Dima"),
					SubscribeTo(vadim.Username),
				},
			},
			{
				Login: alex.Username,
				Actions: []Action{
					SubscribeTo(vadim.Username),
					SubscribeTo(dima.Username),
				},
			},
		},
	}
}

// User looks up a plan user by username.
func (p Plan) User(username string) (model.UserRecord, bool) {
	for _, u := range p.Users {
		if u.Username == username {
			return u, true
		}
	}
	return model.UserRecord{}, false
}

// Validate checks the plan is runnable. It says nothing about whether the
// target service will accept the data.
func (p Plan) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(p.Users))
	for i, u := range p.Users {
		if strings.TrimSpace(u.Username) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: username is empty", i))
			continue
		}
		if seen[u.Username] {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate username %q", i, u.Username))
		}
		seen[u.Username] = true
	}
	for i, st := range p.Steps {
		if !seen[st.Login] {
			errs = append(errs, fmt.Errorf("steps[%d]: login user %q is not in users", i, st.Login))
		}
		for j, a := range st.Actions {
			switch a.Kind {
			case ActionTweet, ActionSubscribe:
			default:
				errs = append(errs, fmt.Errorf("steps[%d].actions[%d]: unknown kind %q", i, j, a.Kind))
				continue
			}
			if strings.TrimSpace(a.Text) == "" {
				errs = append(errs, fmt.Errorf("steps[%d].actions[%d]: %s text is empty", i, j, a.Kind))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
	}
	return nil
}
