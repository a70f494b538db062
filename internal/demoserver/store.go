package demoserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // SQLite driver
)

var (
	ErrRecordNotFound           = errors.New("record not found")
	ErrRecordExists             = errors.New("record already exists")
	ErrInvalidRecord            = errors.New("invalid record")
	ErrIncorrectEmailOrPassword = errors.New("incorrect email or password")
	ErrNotAuthenticated         = errors.New("not authenticated")
)

const (
	minPasswordLen = 6
	maxPasswordLen = 100
	maxTweetLen    = 280
)

// User is an account row. The password hash never leaves the store.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type Tweet struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"post_time"`
}

// Store keeps users, sessions, tweets and subscriptions in SQLite.
type Store struct {
	db   *sql.DB
	cost int
}

// OpenStore opens dsn (a file path or ":memory:") and applies the schema.
// cost is the bcrypt cost for password hashes; 0 means bcrypt.DefaultCost.
func OpenStore(dsn string, cost int) (*Store, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, cost: cost}, nil
}

func applySchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tweets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			message TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tweets_user ON tweets(user_id)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			user_id INTEGER NOT NULL REFERENCES users(id),
			publisher_id INTEGER NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, publisher_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func validateUser(email, username, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidRecord, email)
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidRecord)
	}
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidRecord, minPasswordLen, maxPasswordLen)
	}
	return nil
}

// CreateUser registers a new account. Email and username are unique.
func (s *Store) CreateUser(ctx context.Context, email, username, password string) (*User, error) {
	if err := validateUser(email, username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		email, username, hash, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if err := inserted(res, "email or username taken"); err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Email: email, Username: username}, nil
}

func (s *Store) findUser(ctx context.Context, where string, arg any) (*User, []byte, error) {
	u := &User{}
	var hash []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash FROM users WHERE `+where+` = ?`, arg).
		Scan(&u.ID, &u.Email, &u.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return u, hash, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	u, _, err := s.findUser(ctx, "username", username)
	return u, err
}

// Authenticate checks credentials and opens a new session, returning its
// token.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	u, hash, err := s.findUser(ctx, "email", email)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, "", ErrIncorrectEmailOrPassword
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, "", ErrIncorrectEmailOrPassword
	}

	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, u.ID, time.Now().Unix()); err != nil {
		return nil, "", fmt.Errorf("insert session: %w", err)
	}
	return u, token, nil
}

// UserForSession resolves a session token.
func (s *Store) UserForSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	u := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.username
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, token).Scan(&u.ID, &u.Email, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) CreateTweet(ctx context.Context, userID int64, message string) (*Tweet, error) {
	if n := utf8.RuneCountInString(message); n < 1 || n > maxTweetLen {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", ErrInvalidRecord, maxTweetLen)
	}
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tweets (user_id, message, created_at) VALUES (?, ?, ?)`,
		userID, message, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert tweet: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Tweet{ID: id, UserID: userID, Message: message, PostedAt: time.Unix(now.Unix(), 0)}, nil
}

// UserTweets returns the messages userID posted, oldest first.
func (s *Store) UserTweets(ctx context.Context, userID int64) ([]string, error) {
	return s.column(ctx, `SELECT message FROM tweets WHERE user_id = ? ORDER BY id`, userID)
}

// SubscriptionTweets returns the messages posted by everyone userID follows,
// oldest first.
func (s *Store) SubscriptionTweets(ctx context.Context, userID int64) ([]string, error) {
	return s.column(ctx, `
		SELECT t.message
		FROM tweets t JOIN subscriptions sub ON sub.publisher_id = t.user_id
		WHERE sub.user_id = ?
		ORDER BY t.id`, userID)
}

func (s *Store) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Subscribe makes userID follow publisherID.
func (s *Store) Subscribe(ctx context.Context, userID, publisherID int64) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, publisher_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, publisher_id) DO NOTHING`,
		userID, publisherID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return inserted(res, "already subscribed")
}

// inserted reports ErrRecordExists when an ON CONFLICT DO NOTHING insert
// skipped its row.
func inserted(res sql.Result, detail string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRecordExists, detail)
	}
	return nil
}

// Subscriptions returns the usernames userID follows, sorted.
func (s *Store) Subscriptions(ctx context.Context, userID int64) ([]string, error) {
	return s.column(ctx, `
		SELECT u.username
		FROM subscriptions sub JOIN users u ON u.id = sub.publisher_id
		WHERE sub.user_id = ?
		ORDER BY u.username`, userID)
}
