package rinsight

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

func TestMockClientReturnsCopies(t *testing.T) {
	client := NewMockClient(DemoData())
	scores, err := client.FetchScores(context.Background(), dashboard.DefaultDateRange)
	if err != nil {
		t.Fatalf("fetch scores: %v", err)
	}
	academic := scores.Categories[dashboard.CategoryAcademic]
	academic.TrendData[0] = -1
	scores.Categories[dashboard.CategoryHousing] = dashboard.CategoryScore{Score: 1}

	again, _ := client.FetchScores(context.Background(), dashboard.DefaultDateRange)
	if again.Categories[dashboard.CategoryAcademic].TrendData[0] == -1 {
		t.Fatalf("expected trend data to be copied")
	}
	if _, ok := again.Score(dashboard.CategoryHousing); ok {
		t.Fatalf("expected housing to stay absent from demo data")
	}

	keywords, _ := client.FetchKeywords(context.Background())
	keywords[0].Keyword = "changed"
	fresh, _ := client.FetchKeywords(context.Background())
	if fresh[0].Keyword != "rent" {
		t.Fatalf("expected keyword fixtures to be copied")
	}
}

func TestMockClientFailure(t *testing.T) {
	boom := errors.New("boom")
	client := NewMockClient(MockData{Err: boom})
	ctx := context.Background()
	if _, err := client.FetchScores(ctx, dashboard.DefaultDateRange); !errors.Is(err, boom) {
		t.Fatalf("expected scores failure, got %v", err)
	}
	if _, err := client.FetchKeywords(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected keywords failure, got %v", err)
	}
	if _, err := client.FetchRecommendations(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected recommendations failure, got %v", err)
	}
	if _, err := client.ReloadSource(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected reload failure, got %v", err)
	}

	client.SetData(DemoData())
	if result, err := client.ReloadSource(ctx); err != nil || !result.Succeeded() {
		t.Fatalf("expected reload after SetData, got %#v (%v)", result, err)
	}
}
