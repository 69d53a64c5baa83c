// Package entity holds the domain types shared by the validator: the
// classified FeedError and the helpers that normalize user-supplied feed URLs.
package entity

import (
	"fmt"
	"strings"
)

// Kind classifies a FeedError as blocking or advisory.
type Kind string

const (
	// KindError marks a schema violation, fetch failure or parse failure.
	KindError Kind = "error"
	// KindWarning marks an advisory, non-blocking recommendation.
	KindWarning Kind = "warning"
)

// FeedError is a single message of a validation report.
// It is a value type and is never mutated after construction.
type FeedError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// NewFeedError builds a FeedError, rejecting empty messages and unknown kinds.
func NewFeedError(kind Kind, message string) (FeedError, error) {
	if kind != KindError && kind != KindWarning {
		return FeedError{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if strings.TrimSpace(message) == "" {
		return FeedError{}, ErrEmptyMessage
	}
	return FeedError{Kind: kind, Message: message}, nil
}

// fallbackMessage stands in for an empty message from Errorf or Warning.
const fallbackMessage = "Unknown error."

// Errorf builds an error-kind FeedError from a format string.
// Like Warning it goes through NewFeedError; an empty result is replaced
// by fallbackMessage so a report never carries a blank entry.
func Errorf(format string, args ...any) *FeedError {
	fe := mustFeedError(KindError, fmt.Sprintf(format, args...))
	return &fe
}

// Warning builds a warning-kind FeedError.
func Warning(message string) FeedError {
	return mustFeedError(KindWarning, message)
}

func mustFeedError(kind Kind, message string) FeedError {
	fe, err := NewFeedError(kind, message)
	if err != nil {
		// kind は定数なので失敗するのは空メッセージのときだけ
		return FeedError{Kind: kind, Message: fallbackMessage}
	}
	return fe
}

// Error implements the error interface so a FeedError can cross the
// fetcher boundary as the only classified failure type.
func (e *FeedError) Error() string {
	return e.Message
}

// IsWarning reports whether the message is advisory.
func (e FeedError) IsWarning() bool {
	return e.Kind == KindWarning
}

// Label returns the capitalized kind used as the key in JSON reports.
func (e FeedError) Label() string {
	switch e.Kind {
	case KindWarning:
		return "Warning"
	default:
		return "Error"
	}
}
