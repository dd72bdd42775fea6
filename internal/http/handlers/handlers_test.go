package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/services"
)

// ---------- shared test DB + fake object store ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// handlerStore is an in-memory storage.Store for handler tests that go
// through the real services.
type handlerStore struct{ objects map[string]string }

func newHandlerStore() *handlerStore { return &handlerStore{objects: map[string]string{}} }

func (s *handlerStore) Upload(_ context.Context, key string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = string(b)
	return s.PublicURL(key), nil
}

func (s *handlerStore) Copy(_ context.Context, srcKey, dstKey string) error {
	s.objects[dstKey] = s.objects[srcKey]
	return nil
}

func (s *handlerStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *handlerStore) PublicURL(key string) string { return "https://cdn.test/" + key }

// ---------- flexible stubs for every service interface ----------

type stubTILSvc struct {
	create   func(context.Context, string, string, []string) (*domain.TIL, []services.AttachResult, error)
	get      func(context.Context, string) (*domain.TIL, error)
	listPage func(context.Context, string, int, int) ([]domain.TIL, int64, error)
	update   func(context.Context, string, string, string, []string) (*domain.TIL, []services.AttachResult, error)
	del      func(context.Context, string, string) error
}

func (s stubTILSvc) Create(ctx context.Context, u, content string, ids []string) (*domain.TIL, []services.AttachResult, error) {
	if s.create != nil {
		return s.create(ctx, u, content, ids)
	}
	return &domain.TIL{ID: uuid.NewString(), UserID: u, Content: content}, nil, nil
}

func (s stubTILSvc) Get(ctx context.Context, id string) (*domain.TIL, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.TIL{ID: id, UserID: "demo-user", Content: "stub"}, nil
}

func (s stubTILSvc) ListPage(ctx context.Context, u string, p, ps int) ([]domain.TIL, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, u, p, ps)
	}
	return nil, 0, nil
}

func (s stubTILSvc) Update(ctx context.Context, u, id, content string, ids []string) (*domain.TIL, []services.AttachResult, error) {
	if s.update != nil {
		return s.update(ctx, u, id, content, ids)
	}
	return &domain.TIL{ID: id, UserID: u, Content: content}, nil, nil
}

func (s stubTILSvc) Delete(ctx context.Context, u, id string) error {
	if s.del != nil {
		return s.del(ctx, u, id)
	}
	return nil
}

type stubImgSvc struct {
	upload func(context.Context, string, io.Reader) (*domain.TILImage, error)
	del    func(context.Context, string) error
}

func (s stubImgSvc) UploadTemp(ctx context.Context, filename string, r io.Reader) (*domain.TILImage, error) {
	if s.upload != nil {
		return s.upload(ctx, filename, r)
	}
	return &domain.TILImage{ID: uuid.NewString(), URL: "https://cdn.test/temp/x/" + filename, IsTemporary: true}, nil
}

func (s stubImgSvc) DeleteTemp(ctx context.Context, id string) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubCoinSvc struct {
	total   func(context.Context, string) (int, error)
	logPage func(context.Context, string, int) ([]domain.Coin, int64, error)
}

func (s stubCoinSvc) Total(ctx context.Context, u string) (int, error) {
	if s.total != nil {
		return s.total(ctx, u)
	}
	return 0, nil
}

func (s stubCoinSvc) LogPage(ctx context.Context, u string, p int) ([]domain.Coin, int64, error) {
	if s.logPage != nil {
		return s.logPage(ctx, u, p)
	}
	return nil, 0, nil
}

type stubGHSvc struct {
	setInitial func(context.Context, string) (bool, error)
	sync       func(context.Context, string) (*domain.GithubSnapshot, error)
}

func (s stubGHSvc) SetInitial(ctx context.Context, u string) (bool, error) {
	if s.setInitial != nil {
		return s.setInitial(ctx, u)
	}
	return true, nil
}

func (s stubGHSvc) Sync(ctx context.Context, u string) (*domain.GithubSnapshot, error) {
	if s.sync != nil {
		return s.sync(ctx, u)
	}
	return &domain.GithubSnapshot{UserID: u}, nil
}

type stubGBSvc struct {
	leave    func(context.Context, string, string, string) (*domain.Guestbook, error)
	listPage func(context.Context, string, int, int) ([]domain.Guestbook, int64, error)
	update   func(context.Context, string, string, string) error
	remove   func(context.Context, string, string) error
}

func (s stubGBSvc) Leave(ctx context.Context, g, h, content string) (*domain.Guestbook, error) {
	if s.leave != nil {
		return s.leave(ctx, g, h, content)
	}
	return &domain.Guestbook{ID: uuid.NewString(), GuestID: g, HostID: h, Content: content}, nil
}

func (s stubGBSvc) ListPage(ctx context.Context, h string, p, ps int) ([]domain.Guestbook, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, h, p, ps)
	}
	return nil, 0, nil
}

func (s stubGBSvc) Update(ctx context.Context, g, id, content string) error {
	if s.update != nil {
		return s.update(ctx, g, id, content)
	}
	return nil
}

func (s stubGBSvc) Remove(ctx context.Context, g, id string) error {
	if s.remove != nil {
		return s.remove(ctx, g, id)
	}
	return nil
}

type stubBJSvc struct {
	latest     func(context.Context, string) (*domain.Baekjoon, error)
	challenges func(context.Context, string) ([]domain.Challenge, error)
}

func (s stubBJSvc) Latest(ctx context.Context, u string) (*domain.Baekjoon, error) {
	if s.latest != nil {
		return s.latest(ctx, u)
	}
	return &domain.Baekjoon{UserID: u}, nil
}

func (s stubBJSvc) Challenges(ctx context.Context, status string) ([]domain.Challenge, error) {
	if s.challenges != nil {
		return s.challenges(ctx, status)
	}
	return nil, nil
}

// stubHandlers builds a Handlers wired entirely to default stubs; individual
// tests replace the service under test via New.
func stubHandlers() *Handlers {
	return New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, stubGBSvc{}, stubBJSvc{})
}

// ---------- helpers-only tests ----------

func Test_userID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// userID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("fallback userID = %q", got)
	}
	rc.Set("userID", "u1")
	if got := userID(rc); got != "u1" {
		t.Fatalf("ctx userID = %q", got)
	}
	rc.Set("userID", 123) // wrong type → fallback
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("wrong-type fallback userID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "u-123")
	cH.Request = reqH
	if got := userID(cH); got != "u-123" {
		t.Fatalf("header fallback userID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	c.Request = req
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	req = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	c.Request = req
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

func Test_paginationFor(t *testing.T) {
	pg := paginationFor(2, 10, 25)
	if pg.TotalPages != 3 || !pg.HasNext {
		t.Fatalf("25 items in pages of 10: %#v", pg)
	}
	pg = paginationFor(3, 10, 25)
	if pg.HasNext {
		t.Fatalf("last page must not have next: %#v", pg)
	}
	pg = paginationFor(1, 20, 0)
	if pg.TotalPages != 0 || pg.HasNext {
		t.Fatalf("empty set: %#v", pg)
	}
}

func Test_sanitizeContent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\n\n\n\n\nb", "a\n\nb"},
		{"  padded  ", "padded"},
		{"\n\nlead and trail\n\n", "lead and trail"},
	}
	for _, tc := range cases {
		if got := sanitizeContent(tc.in); got != tc.want {
			t.Fatalf("sanitizeContent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
