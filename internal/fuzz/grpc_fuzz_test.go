package fuzz

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	grpcserver "github.com/Billy-Davies-2/fantasy-draft-engine/internal/grpc"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

func newServer(t *testing.T) *grpcserver.Server {
	t.Helper()
	l := config.DefaultLeague()
	l.Teams = 4
	l.Rounds = 3
	ps := pubsub.New()
	svc, err := service.New(service.Options{League: l, Store: dal.NewMemoryDAL(), Events: ps})
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return grpcserver.NewServer(svc, ps)
}

// FuzzGRPCSubmitPick fuzzes the gRPC SubmitPick endpoint
func FuzzGRPCSubmitPick(f *testing.F) {
	// Seed corpus
	f.Add("ars-f1")
	f.Add("invalid")
	f.Add("")

	f.Fuzz(func(t *testing.T, playerID string) {
		server := newServer(t)
		ctx := context.Background()
		_, _ = server.Step(ctx, &structpb.Struct{})

		req, err := structpb.NewStruct(map[string]interface{}{"playerId": playerID})
		if err != nil {
			return
		}
		// Should not panic
		_, _ = server.SubmitPick(ctx, req)
	})
}

// FuzzGRPCStep fuzzes the gRPC Step endpoint
func FuzzGRPCStep(f *testing.F) {
	f.Add(0.0)
	f.Add(3.0)
	f.Add(-1.0)
	f.Add(1e12)

	f.Fuzz(func(t *testing.T, batch float64) {
		server := newServer(t)
		req := &structpb.Struct{Fields: map[string]*structpb.Value{"batch": structpb.NewNumberValue(batch)}}
		_, _ = server.Step(context.Background(), req)
	})
}

// FuzzGRPCRecommendations fuzzes the gRPC Recommendations endpoint
func FuzzGRPCRecommendations(f *testing.F) {
	f.Add("team-1")
	f.Add("team-99")
	f.Add("")

	f.Fuzz(func(t *testing.T, teamID string) {
		server := newServer(t)
		req, err := structpb.NewStruct(map[string]interface{}{"teamId": teamID})
		if err != nil {
			return
		}
		_, _ = server.Recommendations(context.Background(), req)
	})
}
