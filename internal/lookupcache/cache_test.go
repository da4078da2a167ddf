package lookupcache

import (
	"testing"
	"time"
)

func TestPutThenGet(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Put("orders_pk", []byte("k1"), []byte("v1"))
	c.c.Wait()

	v, ok := c.Get("orders_pk", []byte("k1"))
	if !ok || string(v) != "v1" {
		t.Fatalf("Get = (%q, %v), want (v1, true)", v, ok)
	}
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Put("orders_pk", []byte("k1"), []byte("v1"))
	c.c.Wait()
	c.Invalidate("orders_pk", []byte("k1"))
	c.c.Wait()

	time.Sleep(time.Millisecond) // ristretto's Del is processed asynchronously
	if _, ok := c.Get("orders_pk", []byte("k1")); ok {
		t.Fatalf("Get after Invalidate = found, want miss")
	}
}

func TestDistinctIndexesDontCollide(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Put("orders_pk", []byte("k1"), []byte("orders-v1"))
	c.Put("customers_pk", []byte("k1"), []byte("customers-v1"))
	c.c.Wait()

	v, ok := c.Get("orders_pk", []byte("k1"))
	if !ok || string(v) != "orders-v1" {
		t.Fatalf("Get(orders_pk, k1) = (%q, %v), want (orders-v1, true)", v, ok)
	}
	v, ok = c.Get("customers_pk", []byte("k1"))
	if !ok || string(v) != "customers-v1" {
		t.Fatalf("Get(customers_pk, k1) = (%q, %v), want (customers-v1, true)", v, ok)
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	if _, ok := c.Get("x", []byte("k")); ok {
		t.Fatalf("Get on nil cache = found, want miss")
	}
	c.Put("x", []byte("k"), []byte("v")) // must not panic
	c.Invalidate("x", []byte("k"))       // must not panic
	c.Close()                            // must not panic
}
