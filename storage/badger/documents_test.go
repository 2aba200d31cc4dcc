package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

func TestDocumentBasics(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	doc := &core.Document{
		Company:    "Acme Corp",
		ReportYear: 2023,
		SourceURL:  "https://example.com/acme-2023.pdf",
		Title:      "Acme Corp Sustainability Report 2023",
		Pages:      84,
		ChunkCount: 120,
	}

	added, err := stores.Documents.PutDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}

	if added.Key == 0 {
		t.Fatal("Expected derived key, got 0")
	}
	if added.Key != core.DocumentKeyFor("Acme Corp", 2023) {
		t.Fatal("Key does not match DocumentKeyFor")
	}
	if added.IngestedAt.IsZero() {
		t.Fatal("Expected IngestedAt to be set")
	}

	retrieved, err := stores.Documents.GetDocument(ctx, added.Key)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Company != "Acme Corp" || retrieved.ChunkCount != 120 {
		t.Fatalf("Retrieved document mismatch: %+v", retrieved)
	}
}

func TestDocumentUpsertPreservesIngestedAt(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	first, err := stores.Documents.PutDocument(ctx, &core.Document{
		Company:    "Acme Corp",
		ReportYear: 2023,
	})
	if err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}
	ingestedAt := first.IngestedAt

	second, err := stores.Documents.PutDocument(ctx, &core.Document{
		Company:    "Acme Corp",
		ReportYear: 2023,
		ChunkCount: 42,
	})
	if err != nil {
		t.Fatalf("Failed to re-put document: %v", err)
	}

	if !second.IngestedAt.Equal(ingestedAt) {
		t.Fatalf("IngestedAt changed on update: %v vs %v", second.IngestedAt, ingestedAt)
	}

	retrieved, err := stores.Documents.GetDocument(ctx, first.Key)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.ChunkCount != 42 {
		t.Fatalf("Expected updated chunk count 42, got %d", retrieved.ChunkCount)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	_, err = stores.Documents.GetDocument(context.Background(), core.ID(12345))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetDocumentByReport(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	_, err = stores.Documents.PutDocument(ctx, &core.Document{
		Company:    "Acme Corp",
		ReportYear: 2023,
	})
	if err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}

	doc, err := stores.Documents.GetDocumentByReport(ctx, "Acme Corp", 2023)
	if err != nil {
		t.Fatalf("Failed to get document by report: %v", err)
	}
	if doc.Company != "Acme Corp" || doc.ReportYear != 2023 {
		t.Fatalf("Unexpected document: %+v", doc)
	}

	if _, err := stores.Documents.GetDocumentByReport(ctx, "Acme Corp", 2024); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown year, got %v", err)
	}
}

func TestListDocuments_Ordering(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	docs := []*core.Document{
		{Company: "Zenith Ltd", ReportYear: 2022},
		{Company: "Acme Corp", ReportYear: 2024},
		{Company: "Acme Corp", ReportYear: 2022},
		{Company: "Midway Inc", ReportYear: 2023},
	}
	for _, d := range docs {
		if _, err := stores.Documents.PutDocument(ctx, d); err != nil {
			t.Fatalf("Failed to put document: %v", err)
		}
	}

	listed, err := stores.Documents.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(listed) != 4 {
		t.Fatalf("Expected 4 documents, got %d", len(listed))
	}

	wantOrder := []struct {
		company string
		year    int
	}{
		{"Acme Corp", 2022},
		{"Acme Corp", 2024},
		{"Midway Inc", 2023},
		{"Zenith Ltd", 2022},
	}
	for i, want := range wantOrder {
		if listed[i].Company != want.company || listed[i].ReportYear != want.year {
			t.Fatalf("Position %d: expected %s/%d, got %s/%d",
				i, want.company, want.year, listed[i].Company, listed[i].ReportYear)
		}
	}
}

func TestPutDocument_Invalid(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	_, err = stores.Documents.PutDocument(context.Background(), &core.Document{
		Company:    "",
		ReportYear: 2023,
	})
	if !errors.Is(err, core.ErrEmptyCompany) {
		t.Fatalf("Expected ErrEmptyCompany, got %v", err)
	}
}
