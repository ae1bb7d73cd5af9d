package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

type fakeChecker struct {
	members map[string]struct{}
	err     error
	calls   int
	lastIDs []string
}

func (f *fakeChecker) CheckMembership(_ context.Context, _ string, imdbIDs []string) (map[string]struct{}, error) {
	f.calls++
	f.lastIDs = imdbIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

func (f *fakeChecker) IsMember(_ context.Context, _ string, imdbID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.members[imdbID]
	return ok, nil
}

func summaries(ids ...string) []domain.MovieSummary {
	out := make([]domain.MovieSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.MovieSummary{IMDBID: id, Title: "Movie " + id})
	}
	return out
}

func TestSearchResultsPreservesOrder(t *testing.T) {
	checker := &fakeChecker{members: map[string]struct{}{"tt2": {}}}
	enricher := New(checker)

	in := summaries("tt1", "tt2", "tt3")
	out, err := enricher.SearchResults(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("SearchResults: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, item := range out {
		if item.IMDBID != in[i].IMDBID || item.Title != in[i].Title {
			t.Fatalf("item %d reordered or mutated: %+v", i, item)
		}
	}
	if out[0].IsFavorite || !out[1].IsFavorite || out[2].IsFavorite {
		t.Fatalf("flags = %v %v %v, want false/true/false",
			out[0].IsFavorite, out[1].IsFavorite, out[2].IsFavorite)
	}
	if checker.calls != 1 {
		t.Fatalf("membership calls = %d, want one batched call", checker.calls)
	}
	if len(checker.lastIDs) != 3 {
		t.Fatalf("batched ids = %v", checker.lastIDs)
	}
}

func TestSearchResultsEmptyInput(t *testing.T) {
	checker := &fakeChecker{err: errors.New("must not be called")}
	enricher := New(checker)

	out, err := enricher.SearchResults(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("SearchResults: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("out = %v, want empty non-nil slice", out)
	}
	if checker.calls != 0 {
		t.Fatalf("membership checked on empty input")
	}
}

func TestSearchResultsPropagatesError(t *testing.T) {
	wantErr := errors.New("store down")
	enricher := New(&fakeChecker{err: wantErr})

	out, err := enricher.SearchResults(context.Background(), "u1", summaries("tt1"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if out != nil {
		t.Fatalf("out = %v, flags must not default on failure", out)
	}
}

func TestDetail(t *testing.T) {
	checker := &fakeChecker{members: map[string]struct{}{"tt1375666": {}}}
	enricher := New(checker)

	detail := domain.MovieDetail{IMDBID: "tt1375666", Title: "Inception"}
	out, err := enricher.Detail(context.Background(), "u1", detail)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if !out.IsFavorite || out.Title != "Inception" {
		t.Fatalf("out = %+v", out)
	}

	other, err := enricher.Detail(context.Background(), "u1", domain.MovieDetail{IMDBID: "tt0000001"})
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if other.IsFavorite {
		t.Fatalf("non-favorite flagged true")
	}
}

func TestDetailPropagatesError(t *testing.T) {
	wantErr := errors.New("store down")
	enricher := New(&fakeChecker{err: wantErr})

	_, err := enricher.Detail(context.Background(), "u1", domain.MovieDetail{IMDBID: "tt1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
