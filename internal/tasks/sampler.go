package tasks

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"

	"aniq/internal/models"
	"aniq/internal/shared"
)

// processSeed orders unseeded samples. Drawn once per process so repeated
// unseeded calls within one run stay stable.
var processSeed = rand.Int63()

// Sample computes a filtered, deterministically ordered subset of source.
//
// Records must satisfy every configured predicate in spec to be eligible
// (genre filtering requires all listed tags). Eligible records are ranked by
// a hash of (seed, media ID); because the rank never depends on a record's
// position in source, adding or removing other records does not change the
// relative order of the survivors. Offset skips the first ranked records and
// size caps the result; a nil size returns everything after the offset.
func Sample(source []models.MediaRecord, spec models.SampleSpec) ([]models.MediaRecord, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	eligible := make([]models.MediaRecord, 0, len(source))
	for _, record := range source {
		if matches(record, spec) {
			eligible = append(eligible, record)
		}
	}

	seed := processSeed
	if spec.Seed != nil {
		seed = *spec.Seed
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := rank(seed, eligible[i].ID), rank(seed, eligible[j].ID)
		if ri != rj {
			return ri < rj
		}
		return eligible[i].ID < eligible[j].ID
	})

	if spec.Offset >= len(eligible) {
		return []models.MediaRecord{}, nil
	}
	eligible = eligible[spec.Offset:]

	if spec.Size != nil && *spec.Size < len(eligible) {
		eligible = eligible[:*spec.Size]
	}

	return eligible, nil
}

func validateSpec(spec models.SampleSpec) error {
	if spec.Size != nil && *spec.Size < 0 {
		return fmt.Errorf("%w: size must not be negative, got %d", shared.ErrInvalidArgument, *spec.Size)
	}
	if spec.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", shared.ErrInvalidArgument, spec.Offset)
	}
	if spec.MaxPopularity != nil && (*spec.MaxPopularity < 0 || *spec.MaxPopularity > 100) {
		return fmt.Errorf("%w: max popularity must be a percentile in [0,100], got %d", shared.ErrInvalidArgument, *spec.MaxPopularity)
	}
	return nil
}

// matches reports whether the record satisfies every configured predicate.
func matches(record models.MediaRecord, spec models.SampleSpec) bool {
	if spec.MaxPopularity != nil && record.Popularity > *spec.MaxPopularity {
		return false
	}
	if spec.MinYear != nil && record.Year < *spec.MinYear {
		return false
	}
	if spec.MaxYear != nil && record.Year > *spec.MaxYear {
		return false
	}
	for _, genre := range spec.Genres {
		if !record.HasGenre(genre) {
			return false
		}
	}
	return true
}

// rank is the stable per-record sampling key: FNV-1a over the seed bytes
// followed by the decimal media ID.
func rank(seed int64, id int) uint64 {
	h := fnv.New64a()

	var seedBytes [8]byte
	binary.BigEndian.PutUint64(seedBytes[:], uint64(seed))
	h.Write(seedBytes[:])
	h.Write([]byte(strconv.Itoa(id)))

	return h.Sum64()
}
