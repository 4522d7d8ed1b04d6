package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fedforum/pkg/logger"
	"fedforum/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActorRef is the snapshot of the acting person taken when the event was
// produced; the delivery must not re-read mutable state later.
type ActorRef struct {
	URI   string `json:"uri"`
	Inbox string `json:"inbox"`
}

// CommunityRef is the snapshot of the owning community.
type CommunityRef struct {
	URI   string `json:"uri"`
	Inbox string `json:"inbox"`
	Local bool   `json:"local"`
}

// VoteEvent is the propagation event emitted after a vote commits locally.
// Score is the originally requested value, not the clamped one.
type VoteEvent struct {
	ObjectURI string
	Actor     ActorRef
	Community CommunityRef
	Score     int16
	Retry     int
}

// Deliverer is the outbound transport. Signing, retry policy beyond the
// in-process requeue, and batching live behind this interface.
type Deliverer interface {
	Deliver(ctx context.Context, inbox string, body []byte) error
}

// DeliveryQueue decouples inbound request handling from federated delivery.
// Producers never block on the network; a full queue drops the event.
type DeliveryQueue struct {
	tasks      chan VoteEvent
	retryTasks chan VoteEvent
	deliverer  Deliverer
	collector  *metrics.Collector
	domain     string
	workerNum  int
	maxRetry   int
}

func NewDeliveryQueue(deliverer Deliverer, collector *metrics.Collector, domain string, workerNum, bufferSize int) *DeliveryQueue {
	return &DeliveryQueue{
		tasks:      make(chan VoteEvent, bufferSize),
		retryTasks: make(chan VoteEvent, bufferSize/2),
		deliverer:  deliverer,
		collector:  collector,
		domain:     domain,
		workerNum:  workerNum,
		maxRetry:   3,
	}
}

// Start launches the delivery workers. They exit when ctx is cancelled;
// undelivered events are dropped on shutdown rather than retried forever.
func (q *DeliveryQueue) Start(ctx context.Context) {
	for i := 0; i < q.workerNum; i++ {
		go q.worker(ctx, i)
	}
	go q.retryWorker(ctx)
	logger.Log.Info("delivery queue started", zap.Int("workers", q.workerNum))
}

// Submit enqueues a propagation event without blocking the caller.
func (q *DeliveryQueue) Submit(event VoteEvent) {
	select {
	case q.tasks <- event:
		q.collector.SetQueueDepth(len(q.tasks))
	default:
		q.collector.DeliveryResult("dropped")
		logger.Log.Warn("delivery queue full, event dropped",
			zap.String("object", event.ObjectURI),
			zap.String("actor", event.Actor.URI))
	}
}

func (q *DeliveryQueue) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-q.tasks:
			q.collector.SetQueueDepth(len(q.tasks))
			if err := q.process(ctx, event); err != nil {
				q.collector.DeliveryResult("error")
				logger.Log.Warn("delivery failed",
					zap.Int("worker", id),
					zap.String("object", event.ObjectURI),
					zap.Error(err))

				if event.Retry < q.maxRetry {
					event.Retry++
					select {
					case q.retryTasks <- event:
					default:
						q.collector.DeliveryResult("dropped")
					}
				} else {
					q.collector.DeliveryResult("dropped")
					logger.Log.Error("delivery exceeded max retries, dropped",
						zap.String("object", event.ObjectURI))
				}
				continue
			}
			q.collector.DeliveryResult("ok")
		}
	}
}

func (q *DeliveryQueue) retryWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-q.retryTasks:
			// Back off before re-queueing; grows with the attempt count.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(event.Retry) * time.Second):
			}
			select {
			case q.tasks <- event:
			default:
				q.collector.DeliveryResult("dropped")
			}
		}
	}
}

func (q *DeliveryQueue) process(ctx context.Context, event VoteEvent) error {
	body, err := q.buildActivity(event)
	if err != nil {
		return fmt.Errorf("build activity: %w", err)
	}
	// Local communities have no remote inbox to deliver to; followers of a
	// remote community are reached through that community's inbox.
	if event.Community.Local {
		return nil
	}
	return q.deliverer.Deliver(ctx, event.Community.Inbox, body)
}

// voteActivity is the outbound Like/Dislike wire shape.
type voteActivity struct {
	Context  string `json:"@context"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Actor    string `json:"actor"`
	Object   string `json:"object"`
	Audience string `json:"audience,omitempty"`
}

func (q *DeliveryQueue) buildActivity(event VoteEvent) ([]byte, error) {
	kind := "Like"
	if event.Score < 0 {
		kind = "Dislike"
	}
	activity := voteActivity{
		Context:  "https://www.w3.org/ns/activitystreams",
		ID:       fmt.Sprintf("https://%s/activities/like/%s", q.domain, uuid.New().String()),
		Type:     kind,
		Actor:    event.Actor.URI,
		Object:   event.ObjectURI,
		Audience: event.Community.URI,
	}
	return json.Marshal(activity)
}
