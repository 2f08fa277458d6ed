package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

func newTestService(t *testing.T) (*service.Service, *pubsub.PubSub) {
	t.Helper()
	l := config.DefaultLeague()
	l.Teams = 4
	l.Rounds = 5
	ps := pubsub.New()
	svc, err := service.New(service.Options{League: l, Store: dal.NewMemoryDAL(), Events: ps})
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return svc, ps
}

func dial(t *testing.T, srv *Server) *DraftServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterDraftServiceServer(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewDraftServiceClient(conn)
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGetStateAndStep(t *testing.T) {
	svc, ps := newTestService(t)
	client := dial(t, NewServer(svc, ps))
	ctx := context.Background()

	st, err := client.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got := st.Fields["status"].GetStringValue(); got != "idle" {
		t.Errorf("status = %q, want idle", got)
	}
	if got := len(st.Fields["teams"].GetListValue().GetValues()); got != 4 {
		t.Errorf("teams = %d, want 4", got)
	}

	res, err := client.Step(ctx, mustStruct(t, map[string]interface{}{"batch": 0}))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := res.Fields["kind"].GetStringValue(); got != "awaiting_human" {
		t.Errorf("kind = %q, want awaiting_human", got)
	}
}

func TestSubmitPick(t *testing.T) {
	svc, ps := newTestService(t)
	client := dial(t, NewServer(svc, ps))
	ctx := context.Background()

	if _, err := client.Step(ctx, &structpb.Struct{}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	tests := []struct {
		name string
		req  map[string]interface{}
		code codes.Code
	}{
		{"missing id", map[string]interface{}{}, codes.InvalidArgument},
		{"unknown player", map[string]interface{}{"playerId": "nobody"}, codes.FailedPrecondition},
		{"valid", map[string]interface{}{"playerId": svc.Players(models.PositionForward, 1)[0].ID}, codes.OK},
		{"out of turn", map[string]interface{}{"playerId": svc.Players(models.PositionMidfield, 1)[0].ID}, codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := client.SubmitPick(ctx, mustStruct(t, tt.req))
			if got := status.Code(err); got != tt.code {
				t.Fatalf("code = %v, want %v (%v)", got, tt.code, err)
			}
			if tt.code == codes.OK && rec.Fields["pickNumber"].GetNumberValue() != 1 {
				t.Errorf("pickNumber = %v, want 1", rec.Fields["pickNumber"])
			}
		})
	}
}

func TestRecommendationsAndResults(t *testing.T) {
	svc, ps := newTestService(t)
	client := dial(t, NewServer(svc, ps))
	ctx := context.Background()

	recs, err := client.Recommendations(ctx, mustStruct(t, map[string]interface{}{"teamId": "team-2"}))
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(recs.Fields["recommendations"].GetListValue().GetValues()) == 0 {
		t.Error("expected recommendations")
	}

	_, err = client.Recommendations(ctx, mustStruct(t, map[string]interface{}{"teamId": "team-99"}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("code = %v, want NotFound", status.Code(err))
	}

	if _, err := client.AutoPick(ctx); status.Code(err) != codes.FailedPrecondition {
		t.Errorf("AutoPick before start code = %v, want FailedPrecondition", status.Code(err))
	}

	if _, err := svc.Simulate(); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	res, err := client.Results(ctx)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if !res.Fields["complete"].GetBoolValue() {
		t.Error("expected complete results")
	}
}

func TestStreamEvents(t *testing.T) {
	svc, ps := newTestService(t)
	client := dial(t, NewServer(svc, ps))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := client.StreamEvents(ctx)
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}

	for ps.SubscriberCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("stream never subscribed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	msg, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got := msg.Fields["type"].GetStringValue(); got != "draft:start" {
		t.Errorf("type = %q, want draft:start", got)
	}
}

func TestToStructWrapsLists(t *testing.T) {
	s, err := toStruct([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.Fields["items"].GetListValue().GetValues()); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}
}
