package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growlog/til-backend/internal/services"
)

// ---------- LeaveGuestbook ----------

func TestLeaveGuestbook_BadJSON_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400
	{
		h := stubHandlers()
		r := gin.New()
		r.POST("/guestbooks/:hostID", h.LeaveGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/guestbooks/host-1", bytes.NewBufferString("{bad"))
		req.Header.Set("X-User-ID", "guest-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Success through the real service -> 201
	{
		db := newHandlerDB(t)
		svc := services.NewGuestbookService(db)
		h := New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, svc, stubBJSvc{})
		r := gin.New()
		r.POST("/guestbooks/:hostID", h.LeaveGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/guestbooks/host-1", bytes.NewBufferString(`{"content":"  nice streak!  "}`))
		req.Header.Set("X-User-ID", "guest-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("leave -> %d body=%s", w.Code, w.Body.String())
		}
		var out GuestbookResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		gb := out.Guestbook
		if gb.GuestID != "guest-1" || gb.HostID != "host-1" || gb.Content != "nice streak!" {
			t.Fatalf("unexpected entry: %#v", gb)
		}
	}
}

// ---------- ListGuestbooks ----------

func TestListGuestbooks_SuccessPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	svc := services.NewGuestbookService(db)
	h := New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, svc, stubBJSvc{})
	r := gin.New()
	r.POST("/guestbooks/:hostID", h.LeaveGuestbook)
	r.GET("/guestbooks/:hostID", h.ListGuestbooks)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/guestbooks/host-1", bytes.NewBufferString(`{"content":"hi"}`))
		req.Header.Set("X-User-ID", "guest-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed %d -> %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guestbooks/host-1?page=1&page_size=2", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListGuestbooksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Guestbooks) != 2 || out.Pagination.Total != 3 || !out.Pagination.HasNext {
		t.Fatalf("unexpected page: %d items, %#v", len(out.Guestbooks), out.Pagination)
	}
}

// ---------- UpdateGuestbook / DeleteGuestbook ----------

func TestUpdateGuestbook_UUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// bad UUID
	{
		h := stubHandlers()
		r := gin.New()
		r.PUT("/guestbooks/entry/:id", h.UpdateGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/guestbooks/entry/not-uuid", bytes.NewBufferString(`{"content":"x"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("uuid 400 -> %d", w.Code)
		}
	}

	// foreign or missing entry -> 404
	{
		svc := stubGBSvc{
			update: func(context.Context, string, string, string) error { return services.ErrGuestbookNotFound },
		}
		h := New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, svc, stubBJSvc{})
		r := gin.New()
		r.PUT("/guestbooks/entry/:id", h.UpdateGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/guestbooks/entry/"+uuid.NewString(), bytes.NewBufferString(`{"content":"x"}`))
		req.Header.Set("X-User-ID", "stranger")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// success -> 204, args forwarded
	{
		var got struct{ guest, id, content string }
		svc := stubGBSvc{
			update: func(_ context.Context, g, id, content string) error {
				got.guest, got.id, got.content = g, id, content
				return nil
			},
		}
		h := New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, svc, stubBJSvc{})
		r := gin.New()
		r.PUT("/guestbooks/entry/:id", h.UpdateGuestbook)

		entryID := uuid.NewString()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/guestbooks/entry/"+entryID, bytes.NewBufferString(`{"content":"  fixed typo  "}`))
		req.Header.Set("X-User-ID", "guest-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("204 -> %d", w.Code)
		}
		if got.guest != "guest-1" || got.id != entryID || got.content != "fixed typo" {
			t.Fatalf("service args mismatch: %+v", got)
		}
	}
}

func TestDeleteGuestbook_NotFound_And_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// non-author gets 404, never 403
	{
		svc := stubGBSvc{
			remove: func(context.Context, string, string) error { return services.ErrGuestbookNotFound },
		}
		h := New(stubTILSvc{}, stubImgSvc{}, stubCoinSvc{}, stubGHSvc{}, svc, stubBJSvc{})
		r := gin.New()
		r.DELETE("/guestbooks/entry/:id", h.DeleteGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/guestbooks/entry/"+uuid.NewString(), nil)
		req.Header.Set("X-User-ID", "stranger")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// success -> 204
	{
		h := stubHandlers()
		r := gin.New()
		r.DELETE("/guestbooks/entry/:id", h.DeleteGuestbook)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/guestbooks/entry/"+uuid.NewString(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("204 -> %d", w.Code)
		}
	}
}
