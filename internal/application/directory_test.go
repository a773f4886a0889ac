package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/pkg/helpers"
)

// fakeES answers the few endpoints the directory calls.
func fakeES(t *testing.T, searches *int32, lastBody *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			atomic.AddInt32(searches, 1)
			b, _ := io.ReadAll(r.Body)
			*lastBody = string(b)
			_, _ = io.WriteString(w, `{"hits":{"hits":[
				{"_id":"u1","_source":{"id":"u1","username":"tom","role":"Tutor","verified":true}},
				{"_id":"u2","_source":{"id":"u2","username":"tommy","role":"Student"}}
			]}}`)
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/_doc/"):
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"result":"created"}`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectorySearchParsesAndCaches(t *testing.T) {
	var searches int32
	var body string
	srv := fakeES(t, &searches, &body)

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	if err != nil {
		t.Fatalf("NewESClient: %v", err)
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDirectory(es, "users", rdb)
	ctx := context.Background()

	docs, err := d.Search(ctx, "tom", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 2 || docs[0].Username != "tom" || !docs[0].Verified {
		t.Fatalf("docs = %+v", docs)
	}

	var q map[string]any
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		t.Fatalf("query body: %v", err)
	}
	if q["size"].(float64) != 5 {
		t.Errorf("size = %v", q["size"])
	}
	if _, ok := q["query"].(map[string]any)["multi_match"]; !ok {
		t.Errorf("query = %v", q["query"])
	}

	if _, err := d.Search(ctx, "tom", 5); err != nil {
		t.Fatalf("cached Search: %v", err)
	}
	if n := atomic.LoadInt32(&searches); n != 1 {
		t.Fatalf("es searched %d times, want 1", n)
	}
}

func TestDirectoryIndexAndRemove(t *testing.T) {
	var searches int32
	var body string
	srv := fakeES(t, &searches, &body)
	es, _ := helpers.NewESClient([]string{srv.URL}, "", "")
	d := NewDirectory(es, "users", nil)
	ctx := context.Background()

	acc := &entity.Account{
		User:    entity.User{ID: "u1", Username: "tom", Role: entity.RoleTutor},
		Profile: &entity.TutorProfile{IsVerified: true},
	}
	if err := d.IndexAccount(ctx, acc); err != nil {
		t.Fatalf("IndexAccount: %v", err)
	}
	// a missing document is already removed
	if err := d.Remove(ctx, "u1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestNewUserDoc(t *testing.T) {
	doc := NewUserDoc(&entity.Account{
		User:    entity.User{ID: "u9", Username: "ann", Role: entity.RoleStudent},
		Profile: &entity.StudentProfile{},
	})
	if doc.Verified || doc.Role != "Student" || doc.Username != "ann" {
		t.Fatalf("doc = %+v", doc)
	}
}
