package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/infrastructure/graphstore/mocks"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/repository"
	"datagraph-backend/internal/tree"
	"datagraph-backend/pkg/api"
	appErrors "datagraph-backend/pkg/errors"
)

type mockCategories struct{ mock.Mock }

func (m *mockCategories) Create(ctx context.Context, name string) (*catalog.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*catalog.Category)
	return c, args.Error(1)
}

func (m *mockCategories) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockCategories) ListNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type mockDatasets struct{ mock.Mock }

func (m *mockDatasets) Create(ctx context.Context, ds catalog.Dataset) (*catalog.Dataset, error) {
	args := m.Called(ctx, ds)
	d, _ := args.Get(0).(*catalog.Dataset)
	return d, args.Error(1)
}

func (m *mockDatasets) Get(ctx context.Context, name string) (map[string]interface{}, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(map[string]interface{})
	return p, args.Error(1)
}

func (m *mockDatasets) Touch(ctx context.Context, name, user string) error {
	return m.Called(ctx, name, user).Error(0)
}

func (m *mockDatasets) Delete(ctx context.Context, name, user string) error {
	return m.Called(ctx, name, user).Error(0)
}

func (m *mockDatasets) ListByUser(ctx context.Context, user string) ([]map[string]interface{}, error) {
	args := m.Called(ctx, user)
	l, _ := args.Get(0).([]map[string]interface{})
	return l, args.Error(1)
}

func (m *mockDatasets) ListAll(ctx context.Context) ([]map[string]interface{}, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]map[string]interface{})
	return l, args.Error(1)
}

func do(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) api.ErrorBody {
	t.Helper()
	var body api.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCategoryHandler(t *testing.T) {
	collector := observability.NewCollector("test")

	t.Run("create returns 201", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("Create", mock.Anything, "Data Science").
			Return(&catalog.Category{Name: "data science", ShareData: true}, nil)
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.CreateCategory, http.MethodPost, "/category/create?name=Data+Science", "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"name":"data science","share_data":true}`, w.Body.String())
		repo.AssertExpectations(t)
	})

	t.Run("create without name is 400", func(t *testing.T) {
		repo := new(mockCategories)
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.CreateCategory, http.MethodPost, "/category/create", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", errorBody(t, w).Error)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty create result is 500", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("Create", mock.Anything, "cats").Return(nil, appErrors.NewInternal("create category returned no record", nil))
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.CreateCategory, http.MethodPost, "/category/create?name=cats", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "An internal error occurred", errorBody(t, w).Error)
	})

	t.Run("delete of unknown category is 404", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("Delete", mock.Anything, "ghost").Return(appErrors.NewNotFound("category 'ghost' not found"))
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.DeleteCategory, http.MethodDelete, "/category/delete?name=ghost", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "category 'ghost' not found", errorBody(t, w).Error)
	})

	t.Run("delete returns 201", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("Delete", mock.Anything, "Cats").Return(nil)
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.DeleteCategory, http.MethodDelete, "/category/delete?name=Cats", "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"deleted":"cats"}`, w.Body.String())
	})

	t.Run("list shows display names", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("ListNames", mock.Anything).Return([]string{"cats", "data science"}, nil)
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.ListCategories, http.MethodGet, "/categories", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `["Cats","Data science"]`, w.Body.String())
	})

	t.Run("store outage is 503", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("ListNames", mock.Anything).Return(nil, appErrors.NewUnavailable("list categories", graphstore.ErrUnavailable))
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.ListCategories, http.MethodGet, "/categories", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("deadline is 504", func(t *testing.T) {
		repo := new(mockCategories)
		repo.On("ListNames", mock.Anything).Return(nil, appErrors.NewInternal("list categories", context.DeadlineExceeded))
		h := NewCategoryHandler(repo, collector, zap.NewNop())

		w := do(h.ListCategories, http.MethodGet, "/categories", "")

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})
}

func TestDatasetHandler(t *testing.T) {
	collector := observability.NewCollector("test")

	t.Run("create with empty tags", func(t *testing.T) {
		repo := new(mockDatasets)
		expected := catalog.Dataset{
			Name:      "iris",
			BelongsTo: "flowers",
			URL:       "http://example.com/iris.csv",
			User:      "alice",
			ShareData: true,
			Tags:      map[string]string{},
		}
		repo.On("Create", mock.Anything, expected).Return(&expected, nil)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.CreateDataset, http.MethodPost, "/dataset/create",
			`{"name":"iris","belongs_to":"flowers","url":"http://example.com/iris.csv","user":"alice","tags":{}}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("share_data false is passed through", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(ds catalog.Dataset) bool {
			return !ds.ShareData && ds.Tags["species"] == "setosa"
		})).Return(&catalog.Dataset{Name: "iris"}, nil)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.CreateDataset, http.MethodPost, "/dataset/create",
			`{"name":"iris","belongs_to":"flowers","share_data":false,"tags":{"species":"setosa"}}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("reserved tag key is 400", func(t *testing.T) {
		repo := new(mockDatasets)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.CreateDataset, http.MethodPost, "/dataset/create",
			`{"name":"iris","belongs_to":"flowers","tags":{"user":"mallory"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		repo := new(mockDatasets)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.CreateDataset, http.MethodPost, "/dataset/create", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", errorBody(t, w).Error)
	})

	t.Run("missing category is 404", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, appErrors.NewNotFound("category 'nowhere' not found"))
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.CreateDataset, http.MethodPost, "/dataset/create", `{"name":"iris","belongs_to":"nowhere"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get returns properties", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("Get", mock.Anything, "iris").Return(map[string]interface{}{"name": "iris", "url": "u"}, nil)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.GetDataset, http.MethodGet, "/dataset?name=iris", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"iris","url":"u"}`, w.Body.String())
	})

	t.Run("update touches and returns 201", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("Touch", mock.Anything, "Iris", "alice").Return(nil)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.UpdateDataset, http.MethodPut, "/dataset/update", `{"name":"Iris","user":"alice"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"name":"iris","user":"alice"}`, w.Body.String())
	})

	t.Run("update without user is 400", func(t *testing.T) {
		repo := new(mockDatasets)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.UpdateDataset, http.MethodPut, "/dataset/update", `{"name":"iris"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "user is required", errorBody(t, w).Error)
	})

	t.Run("delete not owned is 404", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("Delete", mock.Anything, "iris", "bob").Return(appErrors.NewNotFound("dataset 'iris' not found"))
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.DeleteDataset, http.MethodDelete, "/dataset/delete?name=iris&user=bob", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lists", func(t *testing.T) {
		repo := new(mockDatasets)
		repo.On("ListByUser", mock.Anything, "alice").Return([]map[string]interface{}{{"name": "iris", "species": "setosa"}}, nil)
		repo.On("ListAll", mock.Anything).Return([]map[string]interface{}{{"name": "secret"}}, nil)
		h := NewDatasetHandler(repo, collector, zap.NewNop())

		w := do(h.ListUserDatasets, http.MethodGet, "/datasets?user=alice", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"name":"iris","species":"setosa"}]`, w.Body.String())

		w = do(h.ListAllDatasets, http.MethodGet, "/datasets/all", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"name":"secret"}]`, w.Body.String())

		w = do(h.ListUserDatasets, http.MethodGet, "/datasets", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTreeHandler(t *testing.T) {
	t.Run("builds from store rows", func(t *testing.T) {
		store := new(mocks.MockStore)
		store.On("Read", mock.Anything, mock.Anything, mock.Anything).Return([]graphstore.Record{
			{"node_name": "cats", "upper_node": "Base", "under_nodes": []interface{}{"tabby"}, "label": []interface{}{"Category"}},
			{"node_name": "tabby", "upper_node": "cats", "has_info": int64(1), "label": []interface{}{"Dataset"}, "node_user": "alice", "share_data": "True"},
		}, nil)
		h := NewTreeHandler(repository.NewTreeReader(store), observability.NewCollector("test"), zap.NewNop())

		w := do(h.GetTree, http.MethodGet, "/all", "")

		require.Equal(t, http.StatusOK, w.Code)
		var entries []tree.Entry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 3)
		assert.Equal(t, "Base", entries[0].Name)
		assert.Equal(t, []string{"cats"}, entries[0].UnderNodes)
		assert.True(t, entries[2].HasInformation)
	})

	t.Run("store failure is 500", func(t *testing.T) {
		store := new(mocks.MockStore)
		store.On("Read", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
		h := NewTreeHandler(repository.NewTreeReader(store), nil, zap.NewNop())

		w := do(h.GetTree, http.MethodGet, "/all", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	store := new(mocks.MockStore)
	h := NewHealthHandler(store, zap.NewNop())

	w := do(h.Banner, http.MethodGet, "/neo4j", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Server works!"`, w.Body.String())

	w = do(h.Check, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	store.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	w = do(h.Ready, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	store.On("Ping", mock.Anything).Return(nil).Once()
	w = do(h.Ready, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
