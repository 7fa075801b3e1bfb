package bench

import (
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	c := newQueryCache("mysql", time.Minute)
	sql := "SELECT * FROM orders WHERE customer_id = ?"
	k1 := c.Key(sql, []interface{}{"abc"})
	if k1 != c.Key(sql, []interface{}{"abc"}) {
		t.Fatal("key not stable")
	}
	if k1 == c.Key(sql, []interface{}{"xyz"}) {
		t.Fatal("args ignored")
	}
	if k1 == c.Key("SELECT 1", []interface{}{"abc"}) {
		t.Fatal("sql ignored")
	}
	c2 := newQueryCache("sqlite", time.Minute)
	if k1 == c2.Key(sql, []interface{}{"abc"}) {
		t.Fatal("prefix ignored")
	}
}

func TestCacheHitMiss(t *testing.T) {
	c := newQueryCache("test", time.Minute)
	key := c.Key("SELECT 1", nil)
	if _, ok := c.Get(key); ok {
		t.Fatal("hit on empty cache")
	}
	rows := [][]interface{}{{int64(1), "a"}}
	c.Put(key, rows)
	got, ok := c.Get(key)
	if !ok || len(got) != 1 || got[0][1] != "a" {
		t.Fatalf("ok=%v got=%v", ok, got)
	}
	if c.Hits() != 1 || c.Misses() != 1 {
		t.Fatalf("hits=%v misses=%v", c.Hits(), c.Misses())
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newQueryCache("test", 10*time.Millisecond)
	key := c.Key("SELECT 1", nil)
	c.Put(key, [][]interface{}{{int64(1)}})
	if _, ok := c.Get(key); !ok {
		t.Fatal("fresh entry missed")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("expired entry served")
	}
}

func TestCacheFlush(t *testing.T) {
	c := newQueryCache("test", time.Minute)
	k1 := c.Key("SELECT 1", nil)
	k2 := c.Key("SELECT 2", nil)
	c.Put(k1, nil)
	c.Put(k2, nil)
	c.Flush()
	if _, ok := c.Get(k1); ok {
		t.Fatal()
	}
	if _, ok := c.Get(k2); ok {
		t.Fatal()
	}
}
