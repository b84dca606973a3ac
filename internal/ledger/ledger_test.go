package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var got payload
			ok, err := store.Get(ctx, NamespaceFiles, "missing", &got)
			if err != nil {
				t.Fatalf("Get missing: %v", err)
			}
			if ok {
				t.Fatal("expected missing key to report absent")
			}

			want := payload{Name: "meeting.mp4", Count: 3}
			if err := store.Set(ctx, NamespaceFiles, "f1", want); err != nil {
				t.Fatalf("Set: %v", err)
			}
			ok, err = store.Get(ctx, NamespaceFiles, "f1", &got)
			if err != nil || !ok {
				t.Fatalf("Get: ok=%v err=%v", ok, err)
			}
			if got != want {
				t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
			}

			if err := store.Delete(ctx, NamespaceFiles, "f1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			ok, _ = store.Get(ctx, NamespaceFiles, "f1", &got)
			if ok {
				t.Fatal("expected deleted key to be absent")
			}
		})
	}
}

func TestStoreNamespaceIsolation(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Set(ctx, NamespaceFiles, "f1", payload{Name: "a"}); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, NamespaceStatus, "f1", payload{Name: "b"}); err != nil {
				t.Fatalf("Set: %v", err)
			}

			var got payload
			if _, err := store.Get(ctx, NamespaceStatus, "f1", &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Name != "b" {
				t.Fatalf("namespace collision: got %q", got.Name)
			}

			if err := store.Delete(ctx, NamespaceFiles, "f1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			ok, _ := store.Get(ctx, NamespaceStatus, "f1", &got)
			if !ok {
				t.Fatal("delete in one namespace removed key from another")
			}
		})
	}
}

func TestStoreListKeys(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				key := fmt.Sprintf("f%d", i)
				if err := store.Set(ctx, NamespaceTranscriptions, key, payload{Count: i}); err != nil {
					t.Fatalf("Set: %v", err)
				}
			}

			keys, err := store.ListKeys(ctx, NamespaceTranscriptions)
			if err != nil {
				t.Fatalf("ListKeys: %v", err)
			}
			sort.Strings(keys)
			want := []string{"f0", "f1", "f2"}
			if len(keys) != len(want) {
				t.Fatalf("ListKeys returned %v", keys)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Fatalf("ListKeys returned %v, want %v", keys, want)
				}
			}
		})
	}
}

func TestStoreUpdateSerializesReadModifyWrite(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			const writers = 8
			const perWriter = 25
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWriter; j++ {
						err := store.Update(ctx, NamespaceStatus, "f1", func(raw []byte) ([]byte, error) {
							var p payload
							if raw != nil {
								if err := json.Unmarshal(raw, &p); err != nil {
									return nil, err
								}
							}
							p.Count++
							return json.Marshal(p)
						})
						if err != nil {
							t.Errorf("Update: %v", err)
							return
						}
					}
				}()
			}
			wg.Wait()

			var got payload
			if _, err := store.Get(ctx, NamespaceStatus, "f1", &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Count != writers*perWriter {
				t.Fatalf("lost updates: got %d want %d", got.Count, writers*perWriter)
			}
		})
	}
}

func TestStoreUpdateNilDeletes(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Set(ctx, NamespaceDownloads, "f1/pdf", payload{Name: "x"}); err != nil {
				t.Fatalf("Set: %v", err)
			}
			err := store.Update(ctx, NamespaceDownloads, "f1/pdf", func(raw []byte) ([]byte, error) {
				return nil, nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			var got payload
			ok, _ := store.Get(ctx, NamespaceDownloads, "f1/pdf", &got)
			if ok {
				t.Fatal("expected nil update result to delete the key")
			}
		})
	}
}
