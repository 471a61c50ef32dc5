// Package ingest is the path from raw wire bytes to the event log.
//
// Every envelope is parsed and validated first. A rejected envelope is
// logged and reported but never persisted and never advances the local
// replica clock. Accepted envelopes are applied to the store, which
// reconciles them against their conversation head and merges their
// clocks into the local replica in the same transaction.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/store"
)

// DefaultWorkers bounds batch concurrency when no option is given.
const DefaultWorkers = 4

// maxLineSize caps one JSON line in ReadJSONLines.
const maxLineSize = 1 << 20

// Result reports what happened to one input.
type Result struct {
	Index          int    `json:"index"`
	EventID        string `json:"event_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Rejected       bool   `json:"rejected"`
	// Field and Reason describe the validation failure of a rejected input.
	Field  string             `json:"field,omitempty"`
	Reason string             `json:"reason,omitempty"`
	Apply  *store.ApplyResult `json:"apply,omitempty"`
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithWorkers bounds how many conversations IngestBatch processes at once.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(in *Ingester) {
		if n >= 1 {
			in.workers = n
		}
	}
}

// WithReplica names the local replica whose clock absorbs every accepted
// event. Without it no replica clock is touched.
func WithReplica(id string) Option {
	return func(in *Ingester) { in.replica = id }
}

// Ingester validates envelopes and applies them to a store.
type Ingester struct {
	store   store.StoreInterface
	log     *zap.Logger
	workers int
	replica string
}

// New returns an Ingester. A nil logger is replaced by a no-op logger.
func New(s store.StoreInterface, log *zap.Logger, opts ...Option) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	in := &Ingester{store: s, log: log, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest parses, validates and applies one envelope. Validation failures
// are not errors: they come back as a Result with Rejected set. The error
// return is reserved for storage failures.
func (in *Ingester) Ingest(ctx context.Context, raw []byte) (Result, error) {
	if err := in.checkReplica(ctx); err != nil {
		return Result{}, err
	}
	env, res := in.parse(0, raw)
	if res.Rejected {
		return res, nil
	}
	return in.apply(ctx, res, env)
}

// IngestBatch ingests raws and returns one Result per input, in input
// order. Envelopes are partitioned by conversation; partitions run
// concurrently (at most the configured number of workers), and events of
// one conversation are applied sequentially in input order.
//
// An unknown replica fails the whole batch before anything is applied.
// Otherwise the first storage error cancels the remaining work and is
// returned alongside the results gathered so far.
func (in *Ingester) IngestBatch(ctx context.Context, raws [][]byte) ([]Result, error) {
	if err := in.checkReplica(ctx); err != nil {
		return nil, err
	}
	results := make([]Result, len(raws))
	envs := make([]model.Envelope, len(raws))

	var order []string
	partitions := make(map[string][]int)
	for i, raw := range raws {
		env, res := in.parse(i, raw)
		results[i] = res
		if res.Rejected {
			continue
		}
		envs[i] = env
		if _, ok := partitions[env.ConversationID]; !ok {
			order = append(order, env.ConversationID)
		}
		partitions[env.ConversationID] = append(partitions[env.ConversationID], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for _, conv := range order {
		idxs := partitions[conv]
		g.Go(func() error {
			for _, i := range idxs {
				res, err := in.apply(gctx, results[i], envs[i])
				if err != nil {
					return err
				}
				results[i] = res
			}
			return nil
		})
	}
	err := g.Wait()

	rejected := 0
	for _, r := range results {
		if r.Rejected {
			rejected++
		}
	}
	in.log.Info("batch ingested",
		zap.Int("events", len(raws)),
		zap.Int("conversations", len(order)),
		zap.Int("rejected", rejected),
		zap.Error(err),
	)
	return results, err
}

func (in *Ingester) checkReplica(ctx context.Context) error {
	if in.replica == "" {
		return nil
	}
	if _, err := in.store.GetReplica(ctx, in.replica); err != nil {
		return fmt.Errorf("local replica: %w", err)
	}
	return nil
}

func (in *Ingester) parse(index int, raw []byte) (model.Envelope, Result) {
	res := Result{Index: index}
	env, err := model.ParseEnvelope(raw)
	if err == nil {
		res.EventID = env.ID
		res.ConversationID = env.ConversationID
		return env, res
	}

	res.Rejected = true
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		res.Field, res.Reason = verr.Field, verr.Reason
	} else {
		res.Reason = err.Error()
	}
	in.log.Warn("envelope rejected",
		zap.Int("index", index),
		zap.String("field", res.Field),
		zap.String("reason", res.Reason),
	)
	return model.Envelope{}, res
}

func (in *Ingester) apply(ctx context.Context, res Result, env model.Envelope) (Result, error) {
	var (
		applied store.ApplyResult
		err     error
	)
	if in.replica != "" {
		applied, err = in.store.ApplyEventAs(ctx, in.replica, env)
	} else {
		applied, err = in.store.ApplyEvent(ctx, env)
	}
	if err != nil {
		return res, fmt.Errorf("apply %s: %w", env.ID, err)
	}
	res.Apply = &applied

	fields := []zap.Field{
		zap.String("event", env.ID),
		zap.String("conversation", env.ConversationID),
		zap.Bool("inserted", applied.Inserted),
		zap.String("head", applied.Head.EventID),
	}
	if applied.Outcome != nil {
		fields = append(fields, zap.Stringer("relation", applied.Outcome.Relation))
	}
	in.log.Debug("envelope applied", fields...)
	return res, nil
}

// ReadJSONLines splits r into one JSON document per non-blank line.
func ReadJSONLines(r io.Reader) ([][]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	var out [][]byte
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		out = append(out, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read json lines: %w", err)
	}
	return out, nil
}
