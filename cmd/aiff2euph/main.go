// This tool converts an AIFF file into an EUPH container.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/ravr-audio/euph"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("aiff2euph", flag.ContinueOnError)

	input := flagSet.String("input", "", "path of the AIFF file to convert")
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

	dec := aiff.NewDecoder(file)

	intBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to read PCM from %s: %w", *input, err)
	}

	buf := intBufferToFloat32(intBuf)

	enc := euph.NewEncoder(euph.EncodeOptions{
		Profile:          profile,
		CompressionLevel: *level,
		Checksum:         true,
	})

	data, err := enc.Encode(buf, &euph.Metadata{BitDepth: intBuf.SourceBitDepth})
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

func intBufferToFloat32(intBuf *audio.IntBuffer) *audio.Float32Buffer {
	scale := float64(32768)
	if intBuf.SourceBitDepth > 0 {
		scale = float64(int64(1) << (intBuf.SourceBitDepth - 1))
	}

	buf := &audio.Float32Buffer{
		Format:         intBuf.Format,
		SourceBitDepth: intBuf.SourceBitDepth,
		Data:           make([]float32, len(intBuf.Data)),
	}

	for i, v := range intBuf.Data {
		buf.Data[i] = float32(float64(v) / scale)
	}

	return buf
}
