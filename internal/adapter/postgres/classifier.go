package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Rule matches a *pgconn.PgError by SQLSTATE and a message fragment.
type Rule struct {
	Code     string
	Fragment string
}

// DefaultRules tolerates duplicate-key violations only.
func DefaultRules() []Rule {
	return []Rule{{Code: pgerrcode.UniqueViolation, Fragment: "duplicate key value"}}
}

// Classifier decides whether a failed write is an expected duplicate that
// can be dropped. It is an allow-list: anything not matching a rule,
// including context errors, propagates.
type Classifier struct {
	log   *slog.Logger
	rules []Rule
}

// NewClassifier creates a Classifier. With no rules it uses DefaultRules.
func NewClassifier(log *slog.Logger, rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{log: log, rules: rules}
}

// Ignorable reports whether err matches one of the rules.
func (c *Classifier) Ignorable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	for _, r := range c.rules {
		if pgErr.Code == r.Code && strings.Contains(pgErr.Message, r.Fragment) {
			return true
		}
	}
	return false
}

// Classify returns nil for an ignorable error, after logging it, and err
// unchanged otherwise.
func (c *Classifier) Classify(err error) error {
	if !c.Ignorable(err) {
		return err
	}

	var pgErr *pgconn.PgError
	errors.As(err, &pgErr)
	c.log.Warn("ignored database error",
		slog.String("code", pgErr.Code),
		slog.String("constraint", pgErr.ConstraintName),
		slog.String("error", err.Error()),
	)
	return nil
}
