package services

import (
	"encoding/hex"
	"testing"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
)

func TestContentHashDeterministic(t *testing.T) {
	lat, lng := -23.5505, -46.6333
	req := &dto.CreateReportRequest{
		Description: "Depósito clandestino de agrotóxicos",
		Category:    "AMBIENTAL",
		OccurredAt:  "2026-04-01T09:00:00Z",
		Latitude:    &lat,
		Longitude:   &lng,
	}

	first := ContentHash(req)
	second := ContentHash(req)

	if first != second {
		t.Errorf("same request produced different hashes: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(first))
	}
	if _, err := hex.DecodeString(first); err != nil {
		t.Errorf("hash %q is not hex: %v", first, err)
	}
}

func TestContentHashSensitivity(t *testing.T) {
	lat, lng := 1.0, 2.0
	base := dto.CreateReportRequest{
		Description: "desc",
		Category:    "VIOLENCIA",
		OccurredAt:  "2026-01-01",
		Latitude:    &lat,
		Longitude:   &lng,
	}
	baseHash := ContentHash(&base)

	otherLat := 1.01
	variants := []dto.CreateReportRequest{
		{Description: "desc!", Category: base.Category, OccurredAt: base.OccurredAt, Latitude: base.Latitude, Longitude: base.Longitude},
		{Description: base.Description, Category: "TRAFICO", OccurredAt: base.OccurredAt, Latitude: base.Latitude, Longitude: base.Longitude},
		{Description: base.Description, Category: base.Category, OccurredAt: "2026-01-02", Latitude: base.Latitude, Longitude: base.Longitude},
		{Description: base.Description, Category: base.Category, OccurredAt: base.OccurredAt, Latitude: &otherLat, Longitude: base.Longitude},
	}
	for i, v := range variants {
		if ContentHash(&v) == baseHash {
			t.Errorf("variant %d collided with the base hash", i)
		}
	}
}

func TestContentHashIgnoresPartialCoordinates(t *testing.T) {
	lat := 1.0
	bare := dto.CreateReportRequest{Description: "d", Category: "c", OccurredAt: "t"}
	partial := dto.CreateReportRequest{Description: "d", Category: "c", OccurredAt: "t", Latitude: &lat}

	// A lone latitude never enters the hash; both coordinates are required.
	if ContentHash(&bare) != ContentHash(&partial) {
		t.Error("partial coordinates changed the hash")
	}
}
