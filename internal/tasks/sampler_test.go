package tasks

import (
	"errors"
	"fmt"
	"testing"

	"aniq/internal/models"
	"aniq/internal/shared"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// testCatalog builds n records with IDs 1..n and varied attributes.
func testCatalog(n int) []models.MediaRecord {
	records := make([]models.MediaRecord, 0, n)
	for i := 1; i <= n; i++ {
		genres := []string{"Action"}
		if i%2 == 0 {
			genres = append(genres, "Comedy")
		}
		if i%3 == 0 {
			genres = append(genres, "Drama")
		}
		records = append(records, models.MediaRecord{
			ID:         i,
			Title:      fmt.Sprintf("Title %d", i),
			Year:       2000 + i%20,
			Popularity: (i - 1) % 100,
			Genres:     genres,
			Format:     "TV",
		})
	}
	return records
}

func ids(records []models.MediaRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSample(t *testing.T) {
	t.Run("determinism", func(t *testing.T) {
		source := testCatalog(50)
		spec := models.SampleSpec{Seed: int64Ptr(42), Size: intPtr(10)}

		first, err := Sample(source, spec)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := Sample(source, spec)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(first) != 10 {
			t.Fatalf("expected 10 records, got %d", len(first))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("position %d differs: %d vs %d", i, first[i].ID, second[i].ID)
			}
		}
	})

	t.Run("different seeds give different orders", func(t *testing.T) {
		source := testCatalog(100)

		a, _ := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Size: intPtr(20)})
		b, _ := Sample(source, models.SampleSpec{Seed: int64Ptr(2), Size: intPtr(20)})

		same := true
		for i := range a {
			if a[i].ID != b[i].ID {
				same = false
				break
			}
		}
		if same {
			t.Error("expected different seeds to produce different samples")
		}
	})

	t.Run("offset consistency", func(t *testing.T) {
		source := testCatalog(100)
		const n = 10

		head, err := Sample(source, models.SampleSpec{Seed: int64Ptr(7), Size: intPtr(n)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tail, err := Sample(source, models.SampleSpec{Seed: int64Ptr(7), Size: intPtr(n), Offset: n})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		both, err := Sample(source, models.SampleSpec{Seed: int64Ptr(7), Size: intPtr(2 * n)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		seen := map[int]bool{}
		for _, r := range head {
			seen[r.ID] = true
		}
		for _, r := range tail {
			if seen[r.ID] {
				t.Errorf("record %d appears in both head and tail", r.ID)
			}
		}

		union := append(ids(head), ids(tail)...)
		for i, id := range ids(both) {
			if union[i] != id {
				t.Errorf("union order differs at %d: %d vs %d", i, union[i], id)
			}
		}
	})

	t.Run("overlap of offset samples", func(t *testing.T) {
		// 100 eligible, size=10: offset 0 and offset 5 share exactly 5
		source := testCatalog(100)

		s1, _ := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Size: intPtr(10)})
		s2, _ := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Size: intPtr(10), Offset: 5})

		inS1 := map[int]bool{}
		for _, r := range s1 {
			inS1[r.ID] = true
		}
		overlap := 0
		for _, r := range s2 {
			if inS1[r.ID] {
				overlap++
			}
		}
		if overlap != 5 {
			t.Errorf("expected overlap of 5, got %d", overlap)
		}
	})

	t.Run("stability under perturbation", func(t *testing.T) {
		source := testCatalog(60)
		spec := models.SampleSpec{
			Seed:          int64Ptr(9),
			MaxPopularity: intPtr(40),
			Size:          intPtr(15),
		}

		before, err := Sample(source, spec)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// Drop an ineligible record and add a fresh eligible one
		perturbed := make([]models.MediaRecord, 0, len(source))
		for _, r := range source {
			if r.Popularity > 40 && r.ID == 42 {
				continue
			}
			perturbed = append(perturbed, r)
		}
		perturbed = append(perturbed, models.MediaRecord{ID: 999, Title: "New", Year: 2024, Popularity: 5, Genres: []string{"Action"}})

		after, err := Sample(perturbed, spec)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		inAfter := map[int]int{}
		for i, r := range after {
			inAfter[r.ID] = i
		}

		// Survivors keep their relative order
		last := -1
		for _, r := range before {
			pos, ok := inAfter[r.ID]
			if !ok {
				continue
			}
			if pos < last {
				t.Errorf("record %d moved before a prior record after perturbation", r.ID)
			}
			last = pos
		}
	})

	t.Run("filter conjunction", func(t *testing.T) {
		source := testCatalog(100)
		spec := models.SampleSpec{
			Seed:          int64Ptr(3),
			MaxPopularity: intPtr(50),
			MinYear:       intPtr(2005),
			MaxYear:       intPtr(2015),
			Genres:        []string{"Action", "Comedy"},
		}

		result, err := Sample(source, spec)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result) == 0 {
			t.Fatal("expected some eligible records")
		}

		seen := map[int]bool{}
		for _, r := range result {
			if r.Popularity > 50 {
				t.Errorf("record %d violates popularity filter: %d", r.ID, r.Popularity)
			}
			if r.Year < 2005 || r.Year > 2015 {
				t.Errorf("record %d violates year filter: %d", r.ID, r.Year)
			}
			if !r.HasGenre("Action") || !r.HasGenre("Comedy") {
				t.Errorf("record %d violates genre filter: %v", r.ID, r.Genres)
			}
			if seen[r.ID] {
				t.Errorf("record %d sampled twice", r.ID)
			}
			seen[r.ID] = true
		}
	})

	t.Run("genre matching is case-insensitive", func(t *testing.T) {
		source := testCatalog(10)
		result, err := Sample(source, models.SampleSpec{Genres: []string{"action"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result) != 10 {
			t.Errorf("expected all 10 records, got %d", len(result))
		}
	})

	t.Run("duplicates in source survive", func(t *testing.T) {
		record := models.MediaRecord{ID: 1, Title: "Dup", Popularity: 1}
		result, err := Sample([]models.MediaRecord{record, record}, models.SampleSpec{Seed: int64Ptr(1)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result) != 2 {
			t.Errorf("expected duplicates preserved, got %d records", len(result))
		}
	})

	t.Run("edge cases", func(t *testing.T) {
		source := testCatalog(10)

		t.Run("size exceeds eligible count", func(t *testing.T) {
			result, err := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Size: intPtr(50)})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(result) != 10 {
				t.Errorf("expected all 10 records, got %d", len(result))
			}
		})

		t.Run("offset beyond eligible count returns empty", func(t *testing.T) {
			result, err := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Offset: 100})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(result) != 0 {
				t.Errorf("expected empty result, got %d records", len(result))
			}
		})

		t.Run("omitted size returns whole filtered set", func(t *testing.T) {
			result, err := Sample(source, models.SampleSpec{Seed: int64Ptr(1), Offset: 3})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(result) != 7 {
				t.Errorf("expected 7 records, got %d", len(result))
			}
		})

		t.Run("unseeded sampling is stable within a run", func(t *testing.T) {
			a, _ := Sample(source, models.SampleSpec{Size: intPtr(5)})
			b, _ := Sample(source, models.SampleSpec{Size: intPtr(5)})
			for i := range a {
				if a[i].ID != b[i].ID {
					t.Errorf("unseeded sample differs at %d", i)
				}
			}
		})
	})

	t.Run("validation", func(t *testing.T) {
		source := testCatalog(10)

		t.Run("negative size", func(t *testing.T) {
			_, err := Sample(source, models.SampleSpec{Size: intPtr(-1)})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("negative offset", func(t *testing.T) {
			_, err := Sample(source, models.SampleSpec{Offset: -5})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("popularity outside percentile range", func(t *testing.T) {
			_, err := Sample(source, models.SampleSpec{MaxPopularity: intPtr(101)})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}
