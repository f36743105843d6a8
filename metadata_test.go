package euph

import (
	"errors"
	"testing"
)

func TestMetaPayloadRoundTrip(t *testing.T) {
	in := &Metadata{
		Title:       "Night Drive",
		Artist:      "Analog Twins",
		Album:       "Motorik",
		Genre:       "Electronic",
		Year:        2024,
		TrackNumber: 3,
		Enhancement: &Enhancement{
			AIProcessed:    true,
			GenreDetection: "synthwave",
		},
	}

	payload, err := encodeMetaPayload(in)
	if err != nil {
		t.Fatalf("encode META payload: %v", err)
	}

	out := &Metadata{}
	if err := parseMetaPayload(payload, out); err != nil {
		t.Fatalf("parse META payload: %v", err)
	}

	if out.Title != in.Title || out.Artist != in.Artist || out.Album != in.Album ||
		out.Genre != in.Genre || out.Year != in.Year || out.TrackNumber != in.TrackNumber {
		t.Fatalf("descriptive fields mismatch: %+v", out)
	}

	if out.Enhancement == nil || !out.Enhancement.AIProcessed || out.Enhancement.GenreDetection != "synthwave" {
		t.Fatalf("enhancement fields mismatch: %+v", out.Enhancement)
	}
}

func TestMetaPayloadNilMetadata(t *testing.T) {
	payload, err := encodeMetaPayload(nil)
	if err != nil {
		t.Fatalf("encode nil metadata: %v", err)
	}

	if string(payload) != "{}" {
		t.Fatalf("expected empty JSON object, got %q", payload)
	}

	out := &Metadata{}
	if err := parseMetaPayload(payload, out); err != nil {
		t.Fatalf("parse empty META payload: %v", err)
	}

	if out.Enhancement != nil {
		t.Fatalf("no enhancement should be created for empty payload, got %+v", out.Enhancement)
	}
}

func TestParseMetaPayloadIgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{"title":"A","futureField":{"nested":true},"mood":"calm"}`)

	out := &Metadata{}
	if err := parseMetaPayload(payload, out); err != nil {
		t.Fatalf("parse META payload with unknown fields: %v", err)
	}

	if out.Title != "A" {
		t.Fatalf("title mismatch: %q", out.Title)
	}
}

func TestParseMetaPayloadMalformed(t *testing.T) {
	err := parseMetaPayload([]byte(`{"title":`), &Metadata{})

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	if formatErr.Reason != "malformed META chunk" {
		t.Fatalf("unexpected reason: %q", formatErr.Reason)
	}
}

func TestProfileStringsRoundTrip(t *testing.T) {
	for _, profile := range []Profile{ProfileLossless, ProfileBalanced, ProfileCompact} {
		parsed, err := ParseProfile(profile.String())
		if err != nil {
			t.Fatalf("ParseProfile(%q): %v", profile.String(), err)
		}

		if parsed != profile {
			t.Fatalf("round trip mismatch: %v != %v", parsed, profile)
		}
	}

	if _, err := ParseProfile("huge"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}
