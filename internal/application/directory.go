package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/pkg/helpers"
)

// UserDoc is the searchable projection of an account.
type UserDoc struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserDoc(a *entity.Account) UserDoc {
	d := UserDoc{
		ID:        a.User.ID,
		Username:  a.User.Username,
		Role:      string(a.User.Role),
		CreatedAt: a.User.CreatedAt,
	}
	if t, ok := a.Tutor(); ok {
		d.Verified = t.IsVerified
	}
	return d
}

// UserIndex is the search side of the user directory.
type UserIndex interface {
	IndexAccount(ctx context.Context, a *entity.Account) error
	Remove(ctx context.Context, userID string) error
	Search(ctx context.Context, q string, size int) ([]UserDoc, error)
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "username":   {"type": "search_as_you_type"},
      "role":       {"type": "keyword"},
      "verified":   {"type": "boolean"},
      "created_at": {"type": "date"}
    }
  }
}`

// Directory indexes users in Elasticsearch. Search results are cached in
// Redis for CacheTTL when Cache is set.
type Directory struct {
	ES       *elasticsearch.Client
	Index    string
	Timeout  time.Duration
	Cache    *redis.Client
	CacheTTL time.Duration
}

func NewDirectory(es *elasticsearch.Client, index string, cache *redis.Client) *Directory {
	return &Directory{ES: es, Index: index, Timeout: 3 * time.Second, Cache: cache, CacheTTL: 30 * time.Second}
}

func (d *Directory) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return helpers.EnsureIndex(c, d.ES, d.Index, usersMapping)
}

func (d *Directory) IndexAccount(ctx context.Context, a *entity.Account) error {
	b, err := json.Marshal(NewUserDoc(a))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.Index, DocumentID: a.User.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	res, err := req.Do(c, d.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", a.User.ID, res.Status())
	}
	return nil
}

func (d *Directory) Remove(ctx context.Context, userID string) error {
	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	res, err := esapi.DeleteRequest{Index: d.Index, DocumentID: userID}.Do(c, d.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove user %s: %s", userID, res.Status())
	}
	return nil
}

func searchCacheKey(q string, size int) string {
	return "search:users:" + strconv.Itoa(size) + ":" + strings.ToLower(q)
}

// Search runs a prefix-friendly match on username. An empty query lists
// the most recent users.
func (d *Directory) Search(ctx context.Context, q string, size int) ([]UserDoc, error) {
	q = strings.TrimSpace(q)
	if size <= 0 || size > 50 {
		size = 10
	}

	key := searchCacheKey(q, size)
	if d.Cache != nil {
		var cached []UserDoc
		if ok, err := helpers.RedisGetJSON(ctx, d.Cache, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	var query map[string]any
	if q == "" {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"username", "username._2gram", "username._3gram"},
			},
		}
	}
	body := map[string]any{
		"query": query,
		"size":  size,
		"sort":  []any{"_score", map[string]any{"created_at": "desc"}},
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	res, err := d.ES.Search(
		d.ES.Search.WithContext(c),
		d.ES.Search.WithIndex(d.Index),
		d.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]UserDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	if d.Cache != nil {
		_ = helpers.RedisSetJSON(ctx, d.Cache, key, out, d.CacheTTL)
	}
	return out, nil
}
