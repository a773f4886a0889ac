package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func flashContext(cookies ...*http.Cookie) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		c.Request.AddCookie(ck)
	}
	return w, c
}

func flashCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == flashSession {
			out = append(out, ck)
		}
	}
	return out
}

func TestFlashShownInSameRequestSetsNoCookie(t *testing.T) {
	f := NewFlash("flash-test-secret", false, logrus.New())
	w, c := flashContext()
	c.Writer.Header().Add("Set-Cookie", "session_token=abc; Path=/")

	f.Add(c, LevelError, "Invalid username or password.")
	msgs := f.Pop(c)

	if len(msgs) != 1 || msgs[0].Level != LevelError {
		t.Fatalf("messages = %+v", msgs)
	}
	if got := flashCookies(w); len(got) != 0 {
		t.Fatalf("flash cookies = %d, want 0", len(got))
	}
	if got := w.Header().Values("Set-Cookie"); len(got) != 1 {
		t.Fatalf("other cookies must be kept, got %v", got)
	}
}

func TestFlashCarriedAcrossRedirect(t *testing.T) {
	f := NewFlash("flash-test-secret", false, logrus.New())

	// POST that redirects
	w, c := flashContext()
	f.Add(c, LevelSuccess, "Registered.")
	set := flashCookies(w)
	if len(set) != 1 {
		t.Fatalf("redirect: flash cookies = %d, want 1", len(set))
	}

	// next page adds one more and renders both
	w, c = flashContext(set[0])
	f.Add(c, LevelInfo, "Welcome.")
	msgs := f.Pop(c)
	if len(msgs) != 2 || msgs[0].Text != "Registered." || msgs[1].Text != "Welcome." {
		t.Fatalf("messages = %+v", msgs)
	}
	set = flashCookies(w)
	if len(set) != 1 {
		t.Fatalf("render: flash cookies = %d, want exactly 1", len(set))
	}

	// the cleared cookie holds nothing
	_, c = flashContext(set[0])
	if msgs := f.Pop(c); msgs != nil {
		t.Fatalf("messages shown twice: %+v", msgs)
	}
}
