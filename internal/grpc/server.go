// Package grpc exposes the draft service over gRPC
package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

// Server implements DraftServiceServer
type Server struct {
	svc    *service.Service
	pubsub *pubsub.PubSub
}

// NewServer creates a new gRPC server
func NewServer(svc *service.Service, ps *pubsub.PubSub) *Server {
	return &Server{svc: svc, pubsub: ps}
}

// toStruct converts any JSON-encodable value. Non-object values are
// wrapped under "items".
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		var raw interface{}
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, status.Errorf(codes.Internal, "encode response: %v", err)
		}
		m = map[string]interface{}{"items": raw}
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

// fromStruct decodes a request struct into v through its JSON form
func fromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		return nil
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

// toStatus maps draft and service errors to gRPC codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, draft.ErrTeamNotFound), errors.Is(err, service.ErrPlayerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, draft.ErrPlayerUnavailable), errors.Is(err, draft.ErrNotHumanTurn),
		errors.Is(err, draft.ErrDraftComplete), errors.Is(err, draft.ErrDraftNotStarted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, draft.ErrIllegalPick):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	logger.Error("gRPC: request failed", "error", err)
	return status.Error(codes.Internal, err.Error())
}

// GetState returns the current draft state
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Debug("gRPC: Getting draft state")
	return toStruct(s.svc.State())
}

// Step advances automated teams; the request may carry {"batch": n}
func (s *Server) Step(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Batch int `json:"batch"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if in.Batch < 0 {
		return nil, status.Error(codes.InvalidArgument, "batch must be non-negative")
	}
	res, err := s.svc.Step(in.Batch)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// SubmitPick applies the human pick in {"playerId": id}
func (s *Server) SubmitPick(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		PlayerID string `json:"playerId"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if in.PlayerID == "" {
		return nil, status.Error(codes.InvalidArgument, "playerId is required")
	}
	logger.Info("gRPC: Human pick submitted", "player_id", in.PlayerID)
	rec, err := s.svc.Submit(in.PlayerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(rec)
}

// AutoPick drafts for the team on the clock
func (s *Server) AutoPick(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	rec, err := s.svc.AutoPick()
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(rec)
}

// Recommendations ranks the pool for {"teamId": id}, or the team on the
// clock when no id is given
func (s *Server) Recommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		TeamID string `json:"teamId"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	recs, err := s.svc.Recommendations(in.TeamID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(recs)
}

// Results ranks the teams
func (s *Server) Results(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.svc.Results())
}

// StreamEvents streams draft events until the client goes away
func (s *Server) StreamEvents(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ch := s.pubsub.Subscribe()
	defer s.pubsub.Unsubscribe(ch)
	logger.Debug("gRPC: Event stream opened")

	for {
		select {
		case <-stream.Context().Done():
			logger.Debug("gRPC: Event stream closed")
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := toStruct(event)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}
