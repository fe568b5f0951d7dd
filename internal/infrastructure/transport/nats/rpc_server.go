package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/cubr/queue/internal/application/service"
	domainservice "github.com/cubr/queue/internal/domain/service"
	"github.com/cubr/queue/internal/infrastructure/cache"
	"github.com/cubr/queue/internal/infrastructure/metrics"
)

// RPC subjects, bound via NATS request/reply. Both are queue-subscribed
// under the same group so exactly one running Queue Service instance
// answers each request even when several instances are deployed.
const (
	SubjectPop            = "queue.rpc.pop"
	SubjectGetScaleTarget = "queue.rpc.get_scale_target"

	rpcQueueGroup = "queue-service"
)

// RPCServer binds the Queue Service's pop and get_scale_target operations
// to NATS request/reply subjects.
type RPCServer struct {
	conn    *nats.Conn
	svc     *service.QueueService
	logger  domainservice.Logger
	metrics *metrics.Collector
	cache   *cache.ScaleTargetCache
	subs    []*nats.Subscription
}

// NewRPCServer constructs an RPCServer. scaleCache may be cache.NewNoop()
// to disable read-through caching of get_scale_target.
func NewRPCServer(conn *nats.Conn, svc *service.QueueService, logger domainservice.Logger, m *metrics.Collector, scaleCache *cache.ScaleTargetCache) *RPCServer {
	return &RPCServer{conn: conn, svc: svc, logger: logger, metrics: m, cache: scaleCache}
}

// Listen subscribes both RPC subjects and blocks until ctx is canceled.
func (s *RPCServer) Listen(ctx context.Context) error {
	popSub, err := s.conn.QueueSubscribe(SubjectPop, rpcQueueGroup, s.handlePop)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectPop, err)
	}
	s.subs = append(s.subs, popSub)

	scaleSub, err := s.conn.QueueSubscribe(SubjectGetScaleTarget, rpcQueueGroup, s.handleGetScaleTarget)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectGetScaleTarget, err)
	}
	s.subs = append(s.subs, scaleSub)

	<-ctx.Done()
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	return ctx.Err()
}

type rpcErrorResponse struct {
	Error string `json:"error"`
}

func (s *RPCServer) handlePop(msg *nats.Msg) {
	ctx := context.Background()

	var req service.PopRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.respondError(msg, fmt.Errorf("decode pop request: %w", err))
		return
	}

	resp, err := s.svc.Pop(ctx, req)
	if err != nil {
		if err == service.ErrQueueEmpty {
			s.metrics.RecordPop("empty")
			s.respondError(msg, service.ErrQueueEmpty)
			return
		}
		s.metrics.RecordPop("error")
		s.logger.Error("pop failed", "error", err)
		s.respondError(msg, err)
		return
	}
	s.metrics.RecordPop("ok")

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode pop response failed", "error", err)
		s.respondError(msg, err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("respond to pop failed", "error", err)
	}
}

func (s *RPCServer) handleGetScaleTarget(msg *nats.Msg) {
	ctx := context.Background()

	var resp *service.GetScaleTargetResponse

	if cached, ok := s.cache.Get(ctx); ok {
		resp = &service.GetScaleTargetResponse{Target: cached}
	} else {
		var err error
		resp, err = s.svc.GetScaleTarget(ctx)
		if err != nil {
			s.logger.Error("get_scale_target failed", "error", err)
			s.respondError(msg, err)
			return
		}
		s.cache.Set(ctx, resp.Target)
	}
	s.metrics.SetScaleTarget(resp.Target)

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode get_scale_target response failed", "error", err)
		s.respondError(msg, err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("respond to get_scale_target failed", "error", err)
	}
}

func (s *RPCServer) respondError(msg *nats.Msg, err error) {
	data, marshalErr := json.Marshal(rpcErrorResponse{Error: err.Error()})
	if marshalErr != nil {
		return
	}
	_ = msg.Respond(data)
}
