package cache

import (
	"testing"
	"time"
)

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	c.Set("k", "val", 0, nil)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nonexistent-key-xyz"); ok {
		t.Error("Get missing key: want false")
	}
}

func TestGet_Expired(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("ttl", 1, time.Minute, nil)
	if _, ok := c.Get("ttl"); !ok {
		t.Fatal("Get before expiry: want true")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("ttl"); ok {
		t.Error("Get after expiry: want false")
	}
}

func TestGetOrDefault(t *testing.T) {
	c := NewCache()
	if got := c.GetOrDefault("k", "default"); got != "default" {
		t.Errorf("GetOrDefault missing = %v, want default", got)
	}
	c.Set("k", "stored", 0, nil)
	if got := c.GetOrDefault("k", "default"); got != "stored" {
		t.Errorf("GetOrDefault found = %v, want stored", got)
	}
}

func TestDeleteMany(t *testing.T) {
	c := NewCache()
	c.Set("dm1", 1, 0, nil)
	c.Set("dm2", 2, 0, nil)
	c.DeleteMany("dm1", "dm2")
	if _, ok := c.Get("dm1"); ok {
		t.Error("DeleteMany: dm1 should be gone")
	}
	if _, ok := c.Get("dm2"); ok {
		t.Error("DeleteMany: dm2 should be gone")
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"product", 7}, "x", 0, nil)
	if v, ok := c.GetN("product", 7); !ok || v != "x" {
		t.Fatalf("GetN = %v,%v want x,true", v, ok)
	}
	c.DeleteN("product", 7)
	if _, ok := c.GetN("product", 7); ok {
		t.Error("DeleteN: key should be gone")
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("a", 1, 0, []string{"catalog"})
	c.Set("b", 2, 0, []string{"catalog", "other"})
	c.Set("c", 3, 0, []string{"other"})

	if keys := c.GetKeysByTag("catalog"); len(keys) != 2 {
		t.Fatalf("GetKeysByTag = %v, want 2 keys", keys)
	}
	c.DeleteByTag("catalog")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should be gone")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive")
	}
	if keys := c.GetKeysByTag("catalog"); len(keys) != 0 {
		t.Errorf("tag index not cleared: %v", keys)
	}
}
