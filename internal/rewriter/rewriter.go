// Package rewriter sends the head of a dialogue to a text-rewriting oracle.
//
// The oracle is a capability: anything that turns a Request into text or
// fails. Invoker wraps one oracle call per head and reports the result as an
// Outcome so callers branch on failure explicitly instead of unwinding.
package rewriter

import (
	"context"
	"errors"
	"strings"
)

// ErrRewriteFailed matches every oracle failure reported by Invoker.
var ErrRewriteFailed = errors.New("rewrite failed")

// Request is one oracle call: a system instruction, the user message built
// around the head, and sampling parameters.
type Request struct {
	System      string
	User        string
	Input       string // the head the user message was built from
	Temperature float64
	MaxTokens   int
}

// Oracle is any text-in, text-out service that may fail.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, req Request) (string, error)

func (f OracleFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Identity returns the head unchanged. Used for dry runs.
var Identity = OracleFunc(func(_ context.Context, req Request) (string, error) {
	return req.Input, nil
})

// RewriteError carries the underlying cause of a failed oracle call.
type RewriteError struct {
	Cause error
}

func (e *RewriteError) Error() string {
	if e.Cause == nil {
		return ErrRewriteFailed.Error()
	}
	return ErrRewriteFailed.Error() + ": " + e.Cause.Error()
}

func (e *RewriteError) Is(target error) bool { return target == ErrRewriteFailed }

func (e *RewriteError) Unwrap() error { return e.Cause }

// Outcome is the tagged result of one rewrite: Text on success, Err
// (a *RewriteError) on failure.
type Outcome struct {
	Text string
	Err  error
}

// Failed reports whether the oracle call did not produce a rewrite.
func (o Outcome) Failed() bool { return o.Err != nil }

// Invoker binds an oracle to the prompt injected at construction.
type Invoker struct {
	oracle Oracle
	prompt Prompt
}

func NewInvoker(oracle Oracle, prompt Prompt) *Invoker {
	return &Invoker{oracle: oracle, prompt: prompt}
}

// Prompt returns the prompt every request is built from.
func (i *Invoker) Prompt() Prompt { return i.prompt }

// Rewrite makes exactly one oracle call for head. The response is trimmed
// but otherwise returned as-is.
func (i *Invoker) Rewrite(ctx context.Context, head string) Outcome {
	raw, err := i.oracle.Complete(ctx, i.prompt.Request(head))
	if err != nil {
		return Outcome{Err: &RewriteError{Cause: err}}
	}
	return Outcome{Text: strings.TrimSpace(raw)}
}
