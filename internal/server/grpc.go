package server

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/pkg/core/health"
)

// EvaluatorService is the gRPC service name of the evaluator. Its messages
// are EvalRequest and EvalResult encoded with the "json" codec, so clients
// call it with grpc.CallContentSubtype(JSONCodecName).
const (
	EvaluatorService = "pnc.v1.Evaluator"
	EvaluateMethod   = "/" + EvaluatorService + "/Evaluate"
	JSONCodecName    = "json"
)

// healthRefreshInterval is how often the gRPC serving status is recomputed
// from the health registry
const healthRefreshInterval = 15 * time.Second

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets plain Go structs travel over gRPC
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return JSONCodecName }

// evaluatorServer is the handler type of the evaluator service
type evaluatorServer interface {
	Evaluate(ctx context.Context, req *EvalRequest) (*EvalResult, error)
}

var evaluatorServiceDesc = grpc.ServiceDesc{
	ServiceName: EvaluatorService,
	HandlerType: (*evaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pnc/evaluator",
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EvalRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(evaluatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(evaluatorServer).Evaluate(ctx, req.(*EvalRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// grpcEvaluator exposes the shared evaluator as the gRPC evaluator service.
// Rejected expressions are a normal answer, like on the HTTP route.
type grpcEvaluator struct {
	evaluator *evaluator
}

func (g *grpcEvaluator) Evaluate(ctx context.Context, req *EvalRequest) (*EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	res := g.evaluator.evaluate(ctx, req.Input)
	return &res, nil
}

// newGRPCServer builds the gRPC server with the standard health service and
// the evaluator service registered
func newGRPCServer(ev *evaluator, hs *grpchealth.Server, logger *mdwlog.Logger) *grpc.Server {
	gs := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxBodySize),
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(logger),
			loggingInterceptor(logger),
		),
	)
	grpc_health_v1.RegisterHealthServer(gs, hs)
	gs.RegisterService(&evaluatorServiceDesc, &grpcEvaluator{evaluator: ev})
	return gs
}

// loggingInterceptor logs every unary call at debug level
func loggingInterceptor(logger *mdwlog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Debug("gRPC request", mdwlog.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		})
		return resp, err
	}
}

// recoveryInterceptor turns a handler panic into codes.Internal
func recoveryInterceptor(logger *mdwlog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panic", mdwlog.Fields{
					"method": info.FullMethod,
					"panic":  r,
				})
				err = status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// servingStatus maps a health report to the gRPC serving status. A degraded
// server still evaluates, so only unhealthy means NOT_SERVING.
func servingStatus(report *health.Report) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if report.Status == health.StatusUnhealthy {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}

// refreshGRPCHealth runs the health registry and publishes the result for
// the whole server ("") and for the evaluator service
func (s *Server) refreshGRPCHealth(ctx context.Context) {
	report := s.health.Check(ctx)
	st := servingStatus(report)
	s.grpcHealth.SetServingStatus("", st)
	s.grpcHealth.SetServingStatus(EvaluatorService, st)
}

func (s *Server) watchHealth() {
	ticker := time.NewTicker(healthRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.refreshGRPCHealth(ctx)
			cancel()
		}
	}
}
