package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "file"))
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}

	sqliteKV, err := NewSQLiteKV(filepath.Join(t.TempDir(), "sqlite"))
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	t.Cleanup(func() { _ = sqliteKV.Close() })

	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"sqlite": sqliteKV,
	}
}

func TestKV_RoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(KeyChatStorage); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
			}

			if err := kv.Put(KeyChatStorage, []byte(`{"chats":[]}`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := kv.Get(KeyChatStorage)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"chats":[]}` {
				t.Errorf("Get = %s", got)
			}

			// Overwrite
			if err := kv.Put(KeyChatStorage, []byte(`{"chats":[1]}`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, _ = kv.Get(KeyChatStorage)
			if string(got) != `{"chats":[1]}` {
				t.Errorf("Get after overwrite = %s", got)
			}
		})
	}
}

func TestKV_KeysAreIndependent(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = kv.Put(KeyChatStorage, []byte("a"))
			_ = kv.Put(KeyChatSettings, []byte("b"))

			a, _ := kv.Get(KeyChatStorage)
			b, _ := kv.Get(KeyChatSettings)
			if string(a) != "a" || string(b) != "b" {
				t.Errorf("got %q and %q", a, b)
			}
		})
	}
}

func TestKV_Delete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = kv.Put(KeyAuthSession, []byte("token"))
			if err := kv.Delete(KeyAuthSession); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := kv.Get(KeyAuthSession); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: err = %v", err)
			}
			// Deleting a missing key is not an error
			if err := kv.Delete(KeyAuthSession); err != nil {
				t.Errorf("second Delete failed: %v", err)
			}
		})
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	buf := []byte("hello")
	_ = kv.Put("k", buf)
	buf[0] = 'j'

	got, _ := kv.Get("k")
	if string(got) != "hello" {
		t.Errorf("stored value changed with caller buffer: %s", got)
	}
}

func TestFileKV_Layout(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}

	if err := kv.Put(KeyChatSettings, []byte(`{}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "chat-settings.json"))
	if err != nil {
		t.Fatalf("expected chat-settings.json: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestFileKV_RejectsBadKeys(t *testing.T) {
	kv, _ := NewFileKV(t.TempDir())

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		if err := kv.Put(key, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewSQLiteKV(dir)
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	_ = kv.Put(KeyChatStorage, []byte("persisted"))
	_ = kv.Close()

	reopened, err := NewSQLiteKV(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(KeyChatStorage)
	if err != nil || string(got) != "persisted" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(BackendFile, dir)
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	if _, ok := kv.(*FileKV); !ok {
		t.Errorf("Open(file) returned %T", kv)
	}
	if err := Close(kv); err != nil {
		t.Errorf("Close(file) failed: %v", err)
	}

	kv, err = Open(BackendSQLite, dir)
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	if err := Close(kv); err != nil {
		t.Errorf("Close(sqlite) failed: %v", err)
	}

	if _, err := Open("redis", dir); err == nil {
		t.Error("expected error for unknown backend")
	}
}
