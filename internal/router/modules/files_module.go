package modules

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/online-school/internal/infrastructure/memory"
)

// FilesModule serves uploads held by the in-memory blob store. It is only
// registered when no bucket is configured.
type FilesModule struct {
	Store *memory.BlobStore
}

func NewFilesModule(store *memory.BlobStore) *FilesModule {
	return &FilesModule{Store: store}
}

func (m *FilesModule) Register(root, _ *gin.RouterGroup) {
	root.GET("/blobs/*key", m.serve)
}

func (m *FilesModule) serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	b, ok := m.Store.Get(key)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	ct := b.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, ct, b.Data)
}
