package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"factnet/internal/server/middleware"
	"factnet/pkg/common"
	"factnet/pkg/snapshot"
	"factnet/pkg/store"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i any) error {
	return tv.validator.Struct(i)
}

// clusterStore records the last ReplaceClusters call; everything else is
// unused by the handler under test.
type clusterStore struct {
	replaced []common.TagCluster
}

func (s *clusterStore) ListFacts(context.Context) ([]common.Fact, error) { return nil, nil }
func (s *clusterStore) InsertFacts(context.Context, []common.Fact) (int, error) {
	return 0, errors.New("not implemented")
}
func (s *clusterStore) ListAliases(context.Context) ([]common.AliasRecord, error) { return nil, nil }
func (s *clusterStore) UpsertAliases(context.Context, []common.AliasRecord) error { return nil }
func (s *clusterStore) ListClusters(context.Context) ([]common.TagCluster, error) { return nil, nil }
func (s *clusterStore) ReplaceClusters(_ context.Context, clusters []common.TagCluster) error {
	s.replaced = clusters
	return nil
}
func (s *clusterStore) SaveSnapshot(context.Context, *snapshot.Snapshot) (int64, error) {
	return 0, errors.New("not implemented")
}
func (s *clusterStore) SnapshotMeta(context.Context) (*store.SnapshotMeta, error) { return nil, nil }
func (s *clusterStore) LoadSnapshot(context.Context) (*snapshot.Snapshot, error) { return nil, nil }

func postClustersContext(t *testing.T, body string, st store.FactStorage) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest("POST", "/api/clusters", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return &middleware.AppContext{
		Context: e.NewContext(req, rec),
		App:     &middleware.App{Store: st},
	}, rec
}

func TestPostClustersReplacesTable(t *testing.T) {
	st := &clusterStore{}
	c, rec := postClustersContext(t,
		`{"clusters":[{"cluster_id":"c1","tags":["island","flight"]},{"cluster_id":"c2","tags":["finance"]}]}`,
		st)

	if err := PostClustersHandler(c); err != nil {
		t.Fatalf("PostClustersHandler() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	want := []common.TagCluster{
		{ClusterID: "c1", Tags: []string{"island", "flight"}},
		{ClusterID: "c2", Tags: []string{"finance"}},
	}
	if !reflect.DeepEqual(st.replaced, want) {
		t.Fatalf("ReplaceClusters got %v, want %v", st.replaced, want)
	}
}

func TestPostClustersRejectsInvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"empty cluster list", `{"clusters":[]}`},
		{"missing cluster id", `{"clusters":[{"tags":["island"]}]}`},
		{"missing tags", `{"clusters":[{"cluster_id":"c1"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &clusterStore{}
			c, rec := postClustersContext(t, tc.body, st)

			if err := PostClustersHandler(c); err != nil {
				t.Fatalf("PostClustersHandler() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if st.replaced != nil {
				t.Fatalf("store written on invalid input: %v", st.replaced)
			}
		})
	}
}
