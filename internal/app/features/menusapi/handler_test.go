package menusapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/stratacms/internal/testutil"
)

const testAPIKey = "test-api-key"

func newTestRouter(t *testing.T) (http.Handler, *menutypestore.Store, *cmspagestore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	menuTypes := menutypestore.New(db)
	pages := cmspagestore.New(db)
	h := NewHandler(menuTypes, pages, nil, logger)

	return Routes(h, testAPIKey, logger), menuTypes, pages
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMenuTypes_Create(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/", map[string]string{"name": "Sidebar"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp struct {
		Success bool            `json:"success"`
		Data    models.MenuType `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Data.Name != "Sidebar" {
		t.Errorf("name = %q, want Sidebar", resp.Data.Name)
	}
	if resp.Data.ID.IsZero() {
		t.Error("id should be set")
	}
}

func TestMenuTypes_Create_DuplicateName(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/", map[string]string{"name": "Footer"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}

	// Case-insensitive duplicate
	rec = doJSON(t, router, http.MethodPost, "/", map[string]string{"name": "footer"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Menu type name already exists" {
		t.Errorf("error = %q, want %q", resp.Error, "Menu type name already exists")
	}
}

func TestMenuTypes_Create_Validation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/", map[string]string{"name": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	long := make([]byte, models.MaxMenuTypeNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	rec = doJSON(t, router, http.MethodPost, "/", map[string]string{"name": string(long)})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("long name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// The bound is characters, not bytes: a name of exactly
	// MaxMenuTypeNameLen accented characters is twice that in bytes and
	// must still be accepted.
	accented := strings.Repeat("é", models.MaxMenuTypeNameLen)
	rec = doJSON(t, router, http.MethodPost, "/", map[string]string{"name": accented})
	if rec.Code != http.StatusCreated {
		t.Errorf("accented name status = %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestMenuTypes_List(t *testing.T) {
	router, store, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Top Menu", "Footer"} {
		if _, err := store.Create(ctx, name); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    []models.MenuType `json:"data"`
		Count   int               `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Fatalf("count = %d, len(data) = %d, want 2", resp.Count, len(resp.Data))
	}
	// Sorted by name
	if resp.Data[0].Name != "Footer" || resp.Data[1].Name != "Top Menu" {
		t.Errorf("order = %v, %v; want Footer, Top Menu", resp.Data[0].Name, resp.Data[1].Name)
	}
}

func TestMenuTypes_GetUpdateDelete(t *testing.T) {
	router, store, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mt, err := store.Create(ctx, "Others")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Get
	rec := doJSON(t, router, http.MethodGet, "/"+mt.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Rename
	rec = doJSON(t, router, http.MethodPut, "/"+mt.ID.Hex(), map[string]string{"name": "Miscellaneous"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d. Body: %s", rec.Code, rec.Body.String())
	}

	got, err := store.GetByID(ctx, mt.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Miscellaneous" {
		t.Errorf("name = %q, want Miscellaneous", got.Name)
	}

	// Delete
	rec = doJSON(t, router, http.MethodDelete, "/"+mt.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/"+mt.ID.Hex(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMenuTypes_Delete_WithPages(t *testing.T) {
	router, store, pages := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mt, err := store.Create(ctx, "Main Menu")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := pages.Create(ctx, cmspagestore.CreateInput{
		Title:       "Home",
		Slug:        "home",
		MenuTypeID:  mt.ID,
		ContentKind: models.ContentKindContent,
		Enabled:     true,
		CreatedBy:   "admin",
	}); err != nil {
		t.Fatalf("page Create() error = %v", err)
	}

	rec := doJSON(t, router, http.MethodDelete, "/"+mt.ID.Hex(), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Menu type is still there
	if _, err := store.GetByID(ctx, mt.ID); err != nil {
		t.Errorf("menu type should not have been deleted: %v", err)
	}
}

func TestMenuTypes_InvalidID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/not-a-hex-id", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMenuTypes_RequiresAPIKey(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong key = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
