package service

import (
	"errors"
	"testing"

	"docscan-gateway/internal/domain"
)

func newStoreWithFiles(t *testing.T, names ...string) (*ScanStore, *domain.PendingUpload) {
	t.Helper()
	store := NewScanStore(&MockLogger{})
	scan := store.Create()
	for _, name := range names {
		if _, err := store.AddFile(scan.ID, name, "image/jpeg", []byte(name)); err != nil {
			t.Fatalf("add %s failed: %v", name, err)
		}
	}
	current, err := store.Get(scan.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	return store, current
}

func TestAddFile_AssignsUniqueIDs(t *testing.T) {
	_, scan := newStoreWithFiles(t, "a.jpg", "b.jpg")

	if len(scan.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(scan.Files))
	}
	if scan.Files[0].ID == "" || scan.Files[0].ID == scan.Files[1].ID {
		t.Fatal("expected distinct non-empty file ids")
	}
}

func TestAddFile_RejectsDuplicateName(t *testing.T) {
	store, scan := newStoreWithFiles(t, "page.jpg")

	_, err := store.AddFile(scan.ID, "page.jpg", "image/jpeg", []byte("other"))
	if !errors.Is(err, domain.ErrDuplicateFileName) {
		t.Fatalf("expected duplicate name rejection, got %v", err)
	}
}

func TestReplaceFileData_PreservesNameAndID(t *testing.T) {
	store, scan := newStoreWithFiles(t, "page.jpg")
	original := scan.Files[0]

	if err := store.ReplaceFileData(scan.ID, original.ID, "image/jpeg", []byte("cropped")); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	updated, err := store.Get(scan.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	file := updated.Files[0]
	if file.ID != original.ID || file.Name != "page.jpg" {
		t.Fatalf("replace must preserve identity, got id=%s name=%s", file.ID, file.Name)
	}
	if string(file.Data) != "cropped" {
		t.Fatalf("expected replaced bytes, got %q", file.Data)
	}
}

func TestReorder_AppliesPermutation(t *testing.T) {
	store, scan := newStoreWithFiles(t, "a.jpg", "b.jpg", "c.jpg")

	order := []string{scan.Files[2].ID, scan.Files[0].ID, scan.Files[1].ID}
	if err := store.Reorder(scan.ID, order); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	updated, _ := store.Get(scan.ID)
	got := []string{updated.Files[0].Name, updated.Files[1].Name, updated.Files[2].Name}
	want := []string{"c.jpg", "a.jpg", "b.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestReorder_RejectsNonPermutation(t *testing.T) {
	store, scan := newStoreWithFiles(t, "a.jpg", "b.jpg")

	if err := store.Reorder(scan.ID, []string{scan.Files[0].ID}); err == nil {
		t.Fatal("expected error for short order")
	}
	if err := store.Reorder(scan.ID, []string{scan.Files[0].ID, "bogus"}); err == nil {
		t.Fatal("expected error for unknown id")
	}
	if err := store.Reorder(scan.ID, []string{scan.Files[0].ID, scan.Files[0].ID}); err == nil {
		t.Fatal("expected error for repeated id")
	}
}

func TestRemoveFile(t *testing.T) {
	store, scan := newStoreWithFiles(t, "a.jpg", "b.jpg")

	if err := store.RemoveFile(scan.ID, scan.Files[0].ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	updated, _ := store.Get(scan.ID)
	if len(updated.Files) != 1 || updated.Files[0].Name != "b.jpg" {
		t.Fatalf("unexpected files after remove: %+v", updated.Files)
	}

	if err := store.RemoveFile(scan.ID, "missing"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestClearFiles_ResetsSession(t *testing.T) {
	store, scan := newStoreWithFiles(t, "a.jpg")
	if err := store.SetDocumentName(scan.ID, "Invoice"); err != nil {
		t.Fatalf("set name failed: %v", err)
	}

	if err := store.ClearFiles(scan.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	updated, _ := store.Get(scan.ID)
	if len(updated.Files) != 0 || updated.DocumentName != "" {
		t.Fatalf("expected empty session, got %+v", updated)
	}
}

func TestGet_UnknownScan(t *testing.T) {
	store := NewScanStore(&MockLogger{})

	if _, err := store.Get("nope"); !errors.Is(err, domain.ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound, got %v", err)
	}
}
