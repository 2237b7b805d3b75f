package edugen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

func TestRetryMiddleware(t *testing.T) {
	calls := 0
	flaky := ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("unavailable")
		}
		return &ModelResponse{Messages: []*Message{AssistantMessage("ok")}}, nil
	})
	model := Retry(3, backoff.WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))(flaky)
	res, err := model.Generate(context.Background(), &ModelRequest{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text() != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls", res.Text(), calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	denied := errors.New("denied")
	model := Retry(5, backoff.WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))(
		ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
			calls++
			return nil, backoff.Permanent(denied)
		}))
	if _, err := model.Generate(context.Background(), &ModelRequest{}); !errors.Is(err, denied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestChainMiddlewaresOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next ModelProvider) ModelProvider {
			return ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
				order = append(order, name)
				return next.Generate(ctx, req, opts...)
			})
		}
	}
	base := ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
		order = append(order, "model")
		return &ModelResponse{Messages: []*Message{AssistantMessage("x")}}, nil
	})
	if _, err := ChainMiddlewares(tag("outer"), tag("inner"))(base).Generate(context.Background(), &ModelRequest{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "model" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRequireText(t *testing.T) {
	empty := ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
		return &ModelResponse{Messages: []*Message{AssistantMessage("  ")}}, nil
	})
	if _, err := RequireText()(empty).Generate(context.Background(), &ModelRequest{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestRateLimitHonorsContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	model := RateLimit(limiter)(ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
		return &ModelResponse{Messages: []*Message{AssistantMessage("ok")}}, nil
	}))
	if _, err := model.Generate(context.Background(), &ModelRequest{}); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := model.Generate(ctx, &ModelRequest{}); err == nil {
		t.Fatal("expected the second call to be rate limited")
	}
}
