package euph

import (
	"encoding/json"
	"fmt"
)

// Metadata describes the audio carried by a container. The descriptive
// fields travel as UTF-8 JSON in the META chunk; the technical fields
// (Duration through Profile) live in the fixed binary HEAD chunk and are
// filled in by the decoder.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int

	// Duration of the audio in seconds.
	Duration     float64
	SampleRate   int
	ChannelCount int
	BitDepth     int
	Profile      Profile

	// Enhancement is present when the container carries AI-enhancement or
	// DSP side-channel data.
	Enhancement *Enhancement
}

// Enhancement carries the optional AI-enhancement descriptors. SpatialData
// and DSPSettings are opaque to the codec: they are written through
// unmodified (AIDE and DSPS chunks respectively) and never interpreted.
type Enhancement struct {
	AIProcessed    bool
	GenreDetection string
	SpatialData    []byte
	DSPSettings    json.RawMessage
}

// metaPayload is the JSON wire shape of the META chunk. Only small
// descriptive fields belong here, never blobs.
type metaPayload struct {
	Title          string `json:"title,omitempty"`
	Artist         string `json:"artist,omitempty"`
	Album          string `json:"album,omitempty"`
	Genre          string `json:"genre,omitempty"`
	Year           int    `json:"year,omitempty"`
	TrackNumber    int    `json:"trackNumber,omitempty"`
	AIProcessed    bool   `json:"aiProcessed,omitempty"`
	GenreDetection string `json:"genreDetection,omitempty"`
}

func encodeMetaPayload(m *Metadata) ([]byte, error) {
	payload := metaPayload{}

	if m != nil {
		payload.Title = m.Title
		payload.Artist = m.Artist
		payload.Album = m.Album
		payload.Genre = m.Genre
		payload.Year = m.Year
		payload.TrackNumber = m.TrackNumber

		if m.Enhancement != nil {
			payload.AIProcessed = m.Enhancement.AIProcessed
			payload.GenreDetection = m.Enhancement.GenreDetection
		}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode META payload: %w", err)
	}

	return out, nil
}

// parseMetaPayload fills the descriptive fields of m from META chunk JSON.
// Unknown JSON fields are ignored so newer writers stay readable.
func parseMetaPayload(data []byte, m *Metadata) error {
	var payload metaPayload

	if err := json.Unmarshal(data, &payload); err != nil {
		return &FormatError{Reason: "malformed META chunk"}
	}

	m.Title = payload.Title
	m.Artist = payload.Artist
	m.Album = payload.Album
	m.Genre = payload.Genre
	m.Year = payload.Year
	m.TrackNumber = payload.TrackNumber

	if payload.AIProcessed || payload.GenreDetection != "" {
		if m.Enhancement == nil {
			m.Enhancement = &Enhancement{}
		}

		m.Enhancement.AIProcessed = payload.AIProcessed
		m.Enhancement.GenreDetection = payload.GenreDetection
	}

	return nil
}
