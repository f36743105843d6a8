// This tool converts an MP3 file into an EUPH container, importing its ID3
// tags into the container metadata.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"
	"github.com/ravr-audio/euph"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("mp32euph", flag.ContinueOnError)

	input := flagSet.String("input", "", "path of the MP3 file to convert")
	output := flagSet.String("output", "", "path of the EUPH file to write (defaults next to the input)")
	profileName := flagSet.String("profile", "balanced", "compression profile: lossless, balanced, or compact")
	level := flagSet.Int("level", 6, "compression level 0-9")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *input == "" {
		return fmt.Errorf("the -input flag is required")
	}

	profile, err := euph.ParseProfile(*profileName)
	if err != nil {
		return err
	}

	file, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *input, err)
	}
	defer file.Close()

	meta := readTags(file)

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", *input, err)
	}

	dec, err := mp3.NewDecoder(file)
	if err != nil {
		return fmt.Errorf("failed to open MP3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}

	meta.SampleRate = dec.SampleRate()
	meta.BitDepth = 16

	enc := euph.NewEncoder(euph.EncodeOptions{
		Profile:          profile,
		CompressionLevel: *level,
		Checksum:         true,
	})

	left := make([]float32, len(samples)/2)
	right := make([]float32, len(samples)/2)

	for i := range left {
		left[i] = samples[i*2]
		right[i] = samples[i*2+1]
	}

	data, err := enc.EncodeChannels([][]float32{left, right}, meta)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = (*input)[:len(*input)-len(filepath.Ext(*input))] + euph.FileExtension
	}

	err = os.WriteFile(outPath, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Printf("wrote %s (%d bytes)", outPath, len(data))

	return nil
}

// readTags imports the source file's tags; a file without tags converts
// with empty metadata.
func readTags(file *os.File) *euph.Metadata {
	meta := &euph.Metadata{}

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return meta
	}

	meta.Title = tags.Title()
	meta.Artist = tags.Artist()
	meta.Album = tags.Album()
	meta.Genre = tags.Genre()
	meta.Year = tags.Year()
	meta.TrackNumber, _ = tags.Track()

	return meta
}
