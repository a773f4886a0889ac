package memory

import (
	"context"
	"strings"
	"testing"
)

func TestBlobStorePutDropsOversizedExtension(t *testing.T) {
	s := NewBlobStore()
	ctx := context.Background()

	key, err := s.Put(ctx, "tutor_documents/cv/", "cv."+strings.Repeat("p", 340), "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(key) > 255 || strings.Contains(key, ".") {
		t.Fatalf("key = %q (len %d)", key, len(key))
	}

	key, _ = s.Put(ctx, "profile_pics/", "Me.PNG", "image/png", strings.NewReader("png"))
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key = %q, want .png suffix", key)
	}
	if b, ok := s.Get(key); !ok || string(b.Data) != "png" {
		t.Fatalf("Get(%q) = %+v, %v", key, b, ok)
	}
}
