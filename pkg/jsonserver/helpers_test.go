package jsonserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bitechdev/RASpec/pkg/common/adapters/database"
	"github.com/bitechdev/RASpec/pkg/jsonserver"
	"github.com/bitechdev/RASpec/pkg/testmodels"
)

type testEnv struct {
	db     *gorm.DB
	server *httptest.Server
}

// setupTestDB opens a private in-memory database with the example tables
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(testmodels.Models()...))
	return db
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)

	server := jsonserver.NewServer()
	require.NoError(t, testmodels.Register(server, database.NewGormAdapter(db)))

	r := mux.NewRouter()
	jsonserver.SetupMuxRoutes(r, server, "/api")

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testEnv{db: db, server: ts}
}

// seedUsersAndPosts creates users A, B, C and posts 1-5 for A, 6-7 for B
func (e *testEnv) seedUsersAndPosts(t *testing.T) {
	t.Helper()

	users := []testmodels.User{
		{Name: "Alice", Email: "alice@example.com", Role: "admin"},
		{Name: "Bob", Email: "bob@example.com", Role: "editor"},
		{Name: "Carol", Email: "carol@example.com", Role: "author"},
	}
	require.NoError(t, e.db.Create(&users).Error)

	posts := []testmodels.Post{
		{Title: "Alpha", Content: "Hello world", UserID: 1, Status: "published"},
		{Title: "Bravo", Content: "Second post", UserID: 1, Status: "draft"},
		{Title: "Charlie", Content: "Say HELLO again", UserID: 1, Status: "published"},
		{Title: "Delta", Content: "Fourth", UserID: 1, Status: "archived"},
		{Title: "Echo", Content: "Fifth", UserID: 1, Status: "published"},
		{Title: "Foxtrot", Content: "Bob writes", UserID: 2, Status: "draft"},
		{Title: "Golf", Content: "Bob again", UserID: 2, Status: "published"},
	}
	require.NoError(t, e.db.Create(&posts).Error)
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", string(data))
	return v
}

func postIDs(posts []testmodels.PostDTO) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err, "not an integer: %q", s)
	return n
}

func queryValue(rawQuery, key string) string {
	values, _ := url.ParseQuery(rawQuery)
	return values.Get(key)
}
