package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/mocks"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

func newViewRouter(t *testing.T) (http.Handler, *mocks.MockViewRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	views := mocks.NewMockViewRepository(ctrl)
	router := NewRouter(RouterServices{
		Views: service.NewViewService(service.ViewServiceOptions{ViewRepo: views}),
	})
	return router, views
}

func TestCreateView(t *testing.T) {
	t.Parallel()

	router, views := newViewRouter(t)
	views.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *model.CreateViewRequest) (*model.MaterializedView, error) {
			require.Equal(t, "owner-1", req.Owner)
			require.Equal(t, "sales_summary", req.ViewName)
			return &model.MaterializedView{ID: 7, Owner: req.Owner, ViewName: req.ViewName, Query: req.Query}, nil
		})

	body := `{"view_name":"sales_summary","sql_query":"SELECT 1"}`
	req := httptest.NewRequest(http.MethodPost, "/views/create", strings.NewReader(body))
	req.Header.Set(OwnerHeader, "owner-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"view_name":"sales_summary"`)
}

func TestCreateViewRejectsBadName(t *testing.T) {
	t.Parallel()

	router, _ := newViewRouter(t)

	body := `{"view_name":"Bad Name!","sql_query":"SELECT 1"}`
	req := httptest.NewRequest(http.MethodPost, "/views/create", strings.NewReader(body))
	req.Header.Set(OwnerHeader, "owner-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
}

func TestCreateViewRequiresOwnerHeader(t *testing.T) {
	t.Parallel()

	router, _ := newViewRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/views/create", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "owner_required")
}

func TestListViewsReturnsEmptyArray(t *testing.T) {
	t.Parallel()

	router, views := newViewRouter(t)
	views.EXPECT().
		List(gomock.Any(), "owner-1", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/views", nil)
	req.Header.Set(OwnerHeader, "owner-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetViewUnknownID(t *testing.T) {
	t.Parallel()

	router, _ := newViewRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/views/not-a-number", nil)
	req.Header.Set(OwnerHeader, "owner-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router, _ := newViewRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
